package notify

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
	"github.com/etebarfx/remit-bot/internal/infrastructure/telegram"
	"github.com/etebarfx/remit-bot/pkg/log"
)

// Notifier maps each committed lifecycle transition to the messages the
// customer and the operator set receive. Operator fan-out is best-effort
// and independent per recipient: one failed delivery is logged and never
// blocks the others, and nothing here can roll the transition back.
type Notifier struct {
	sender    telegram.Sender
	operators []int64
	logger    *zerolog.Logger
}

func NewNotifier(sender telegram.Sender, operators []int64) *Notifier {
	l := log.GetLogger()
	return &Notifier{sender: sender, operators: operators, logger: &l}
}

func (n *Notifier) TransactionCreated(tx *models.Transaction) {
	text := fmt.Sprintf(
		"🔔 New transfer request #%d\nCustomer: %s\nFinal amount: £%s\nEquivalent: %s IRT\nStatus: waiting for account details",
		tx.ID, tx.DisplayCustomer(), tx.FinalAmount.StringFixed(2), formatLocal(tx.LocalAmount),
	)
	actions := []telegram.Action{
		{Label: "Send account details", Data: telegram.EncodeCallback(telegram.CallbackOpSendAcc, strconv.FormatInt(tx.ID, 10))},
		{Label: "❌ Cancel request", Data: telegram.EncodeCallback(telegram.CallbackOpCancel, strconv.FormatInt(tx.ID, 10))},
	}
	n.fanOutActions(text, actions)
}

func (n *Notifier) DestinationSent(tx *models.Transaction) {
	n.toCustomer(tx, tx.DestinationText)
	n.toCustomer(tx,
		"These account details are valid for 30 minutes.\n"+
			"Once you have paid, please send a picture of your receipt to this bot.")
}

func (n *Notifier) Cancelled(tx *models.Transaction) {
	n.toCustomer(tx, "Your transfer request was cancelled by the exchange.")
}

func (n *Notifier) ReceiptSubmitted(tx *models.Transaction, origin models.MessageRef) {
	n.toCustomer(tx, "Your receipt has been received. Please wait while we review it. ✅")

	actions := []telegram.Action{
		{Label: "Approve payment ✔", Data: telegram.EncodeCallback(telegram.CallbackOpApprove, strconv.FormatInt(tx.ID, 10))},
		{Label: "Reject receipt ❌", Data: telegram.EncodeCallback(telegram.CallbackOpReject, strconv.FormatInt(tx.ID, 10))},
	}
	for _, op := range n.operators {
		if err := n.sender.ForwardPhoto(op, origin); err != nil {
			n.logger.Warn().Err(err).Int64("operator_id", op).Msg(apperrors.ErrFailedNotifyOperator)
		}
		text := fmt.Sprintf("New receipt for transaction #%d.", tx.ID)
		if err := n.sender.SendActions(op, text, actions); err != nil {
			n.logger.Warn().Err(err).Int64("operator_id", op).Msg(apperrors.ErrFailedNotifyOperator)
		}
	}
}

func (n *Notifier) ReceiptApproved(tx *models.Transaction) {
	n.toCustomer(tx,
		"Your payment has been approved ✅\n"+
			"Please send the beneficiary details in this form:\n"+
			"Beneficiary name\nAccount / card number\nIBAN (if available)")
}

func (n *Notifier) ReceiptRejected(tx *models.Transaction) {
	n.toCustomer(tx, "Your payment receipt was not approved. Please contact support.")
}

func (n *Notifier) RecipientInfoSubmitted(tx *models.Transaction) {
	n.toCustomer(tx, "Beneficiary details saved ✅\nYour remittance has been queued.")

	text := fmt.Sprintf(
		"Beneficiary details for transaction #%d:\nName: %s\nAccount/card: %s\nIBAN: %s",
		tx.ID, tx.Recipient.Name, tx.Recipient.Account, tx.Recipient.BankCode,
	)
	actions := []telegram.Action{
		{Label: "✅ Remittance sent", Data: telegram.EncodeCallback(telegram.CallbackOpSettled, strconv.FormatInt(tx.ID, 10))},
	}
	n.fanOutActions(text, actions)
}

func (n *Notifier) Settled(tx *models.Transaction) {
	n.toCustomer(tx, "Your remittance is complete ✅\nContact support if you need a confirmation slip.")
}

func (n *Notifier) toCustomer(tx *models.Transaction, text string) {
	if err := n.sender.SendText(tx.CustomerID, text); err != nil {
		n.logger.Warn().Err(err).Int64("transaction_id", tx.ID).Msg(apperrors.ErrFailedNotifyCustomer)
	}
}

func (n *Notifier) fanOutActions(text string, actions []telegram.Action) {
	for _, op := range n.operators {
		if err := n.sender.SendActions(op, text, actions); err != nil {
			n.logger.Warn().Err(err).Int64("operator_id", op).Msg(apperrors.ErrFailedNotifyOperator)
		}
	}
}

func formatLocal(v int64) string {
	s := strconv.FormatInt(v, 10)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
