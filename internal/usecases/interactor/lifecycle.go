package interactor

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/domain/repositories"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
	"github.com/etebarfx/remit-bot/pkg/log"
)

// Notifier fans a committed transition out to the customer and the operator
// set. Implementations are best-effort: a delivery failure never propagates
// back into the lifecycle.
type Notifier interface {
	TransactionCreated(tx *models.Transaction)
	DestinationSent(tx *models.Transaction)
	Cancelled(tx *models.Transaction)
	ReceiptSubmitted(tx *models.Transaction, origin models.MessageRef)
	ReceiptApproved(tx *models.Transaction)
	ReceiptRejected(tx *models.Transaction)
	RecipientInfoSubmitted(tx *models.Transaction)
	Settled(tx *models.Transaction)
}

// Lifecycle owns the transaction state machine. Every transition is applied
// as a store-level conditional update, so two conflicting operator actions
// can never both succeed; the loser sees a StaleTransitionError. Operator
// triggers re-verify the acting identity here even though the dispatch layer
// already filtered: unauthorized attempts must never reach the store.
type Lifecycle struct {
	transactions repositories.TransactionRepository
	accounts     repositories.AccountRepository
	notifier     Notifier
	operators    map[int64]struct{}
	logger       *zerolog.Logger
}

func NewLifecycle(
	transactions repositories.TransactionRepository,
	accounts repositories.AccountRepository,
	notifier Notifier,
	operatorIDs []int64,
) *Lifecycle {
	operators := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		operators[id] = struct{}{}
	}
	l := log.GetLogger()
	return &Lifecycle{
		transactions: transactions,
		accounts:     accounts,
		notifier:     notifier,
		operators:    operators,
		logger:       &l,
	}
}

// IsOperator reports whether the identity belongs to the authorized set.
func (i *Lifecycle) IsOperator(id int64) bool {
	_, ok := i.operators[id]
	return ok
}

func (i *Lifecycle) authorize(actorID int64) error {
	if !i.IsOperator(actorID) {
		return apperrors.NewUnauthorizedError()
	}
	return nil
}

// ConfirmQuote persists a new transaction from a confirmed quote. The quote
// values are frozen as-is; the transaction starts waiting for an operator to
// attach a receiving account.
func (i *Lifecycle) ConfirmQuote(ctx context.Context, customer models.Customer, quote models.Quote) (*models.Transaction, error) {
	tx := &models.Transaction{
		CustomerID:  customer.ID,
		Username:    customer.Username,
		FullName:    customer.FullName,
		Amount:      quote.Amount,
		Fee:         quote.Fee,
		FinalAmount: quote.FinalAmount,
		LocalAmount: quote.LocalAmount,
		Status:      models.StatusAwaitingDestinationAccount,
	}

	id, err := i.transactions.Create(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	i.notifier.TransactionCreated(tx)
	return tx, nil
}

// ListPending returns the transactions still waiting for a receiving
// account, for the operator menu.
func (i *Lifecycle) ListPending(ctx context.Context, operatorID int64) ([]repositories.PendingTransactionRow, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}
	return i.transactions.ListByStatus(ctx, models.StatusAwaitingDestinationAccount)
}

// Get returns a transaction for the operator detail view.
func (i *Lifecycle) Get(ctx context.Context, operatorID, txID int64) (*models.Transaction, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}
	return i.transactions.GetByID(ctx, txID)
}

// AttachAccount freezes the selected receiving account into the transaction
// and moves it to AWAITING_RECEIPT. The destination text is rendered once
// here and never recomputed.
func (i *Lifecycle) AttachAccount(ctx context.Context, operatorID, txID, accountID int64) (*models.Transaction, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}

	tx, err := i.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	acc, err := i.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := i.transactions.AttachDestination(ctx, txID, acc.DestinationText(tx.FinalAmount)); err != nil {
		return nil, err
	}

	tx, err = i.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	i.notifier.DestinationSent(tx)
	return tx, nil
}

// Cancel terminates a transaction that has not yet produced a receipt
// decision. Allowed only from the two early states.
func (i *Lifecycle) Cancel(ctx context.Context, operatorID, txID int64) (*models.Transaction, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}

	err := i.transactions.UpdateStatus(ctx, txID, models.StatusCancelledByOperator,
		models.StatusAwaitingDestinationAccount, models.StatusAwaitingReceipt)
	if err != nil {
		return nil, err
	}

	tx, err := i.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	i.notifier.Cancelled(tx)
	return tx, nil
}

// SubmitReceipt routes a photo from the customer to their active
// AWAITING_RECEIPT transaction. A photo with no such transaction is ignored
// (nil, nil). The status does not change; a later photo overwrites the
// stored handle.
func (i *Lifecycle) SubmitReceipt(ctx context.Context, customerID int64, fileID string, origin models.MessageRef) (*models.Transaction, error) {
	tx, err := i.transactions.LatestByCustomerAndStatus(ctx, customerID, models.StatusAwaitingReceipt)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}

	if err := i.transactions.SetReceipt(ctx, tx.ID, fileID); err != nil {
		return nil, err
	}
	tx.ReceiptFileID = fileID

	i.notifier.ReceiptSubmitted(tx, origin)
	return tx, nil
}

// ApproveReceipt accepts the submitted proof of payment and asks the
// customer for beneficiary details.
func (i *Lifecycle) ApproveReceipt(ctx context.Context, operatorID, txID int64) (*models.Transaction, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}

	err := i.transactions.UpdateStatus(ctx, txID, models.StatusAwaitingRecipientInfo, models.StatusAwaitingReceipt)
	if err != nil {
		return nil, err
	}

	tx, err := i.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	i.notifier.ReceiptApproved(tx)
	return tx, nil
}

// RejectReceipt terminally rejects the submitted proof of payment.
func (i *Lifecycle) RejectReceipt(ctx context.Context, operatorID, txID int64) (*models.Transaction, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}

	err := i.transactions.UpdateStatus(ctx, txID, models.StatusReceiptRejected, models.StatusAwaitingReceipt)
	if err != nil {
		return nil, err
	}

	tx, err := i.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	i.notifier.ReceiptRejected(tx)
	return tx, nil
}

// SubmitRecipientInfo parses the customer's beneficiary message and stores
// the triple together with the READY_TO_SETTLE transition as one write.
// Returns (nil, nil) when the customer has no transaction waiting for
// beneficiary details.
func (i *Lifecycle) SubmitRecipientInfo(ctx context.Context, customerID int64, text string) (*models.Transaction, error) {
	tx, err := i.transactions.LatestByCustomerAndStatus(ctx, customerID, models.StatusAwaitingRecipientInfo)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}

	info, err := parseRecipientInfo(text)
	if err != nil {
		return nil, err
	}

	if err := i.transactions.SetRecipientInfo(ctx, tx.ID, info); err != nil {
		return nil, err
	}
	tx.Recipient = info
	tx.Status = models.StatusReadyToSettle

	i.notifier.RecipientInfoSubmitted(tx)
	return tx, nil
}

// MarkSettled records the operator's confirmation that the remittance was
// carried out.
func (i *Lifecycle) MarkSettled(ctx context.Context, operatorID, txID int64) (*models.Transaction, error) {
	if err := i.authorize(operatorID); err != nil {
		return nil, err
	}

	err := i.transactions.UpdateStatus(ctx, txID, models.StatusDone, models.StatusReadyToSettle)
	if err != nil {
		return nil, err
	}

	tx, err := i.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	i.notifier.Settled(tx)
	return tx, nil
}

// parseRecipientInfo splits the free-text beneficiary message: first line is
// the name (required), second the account/card number, third the routing
// identifier. The triple is all-or-nothing; missing trailing lines are
// stored empty.
func parseRecipientInfo(text string) (models.RecipientInfo, error) {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return models.RecipientInfo{}, apperrors.NewValidationError("the message was empty, please send the beneficiary details again")
	}

	info := models.RecipientInfo{Name: lines[0]}
	if len(lines) > 1 {
		info.Account = lines[1]
	}
	if len(lines) > 2 {
		info.BankCode = lines[2]
	}
	return info, nil
}
