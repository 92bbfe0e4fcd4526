package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/etebarfx/remit-bot/internal/config"
	"github.com/etebarfx/remit-bot/internal/domain/models"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
	"github.com/etebarfx/remit-bot/internal/session"
	"github.com/etebarfx/remit-bot/internal/usecases/interactor"
	"github.com/etebarfx/remit-bot/pkg/log"
)

const (
	welcomeText = "Welcome to Etebar FX 🏦\nUse the menu below to see today's rates or start a UK → IR transfer."
	helpText    = "How a transfer works:\n" +
		"1. Tap \"" + LabelStartTransfer + "\" and enter the GBP amount.\n" +
		"2. Confirm the quote, then pay the account details we send you.\n" +
		"3. Send a photo of your payment receipt here.\n" +
		"4. After approval, send the beneficiary details.\n\n" +
		"Questions? Message @etebarfx_support."
	askAmountText   = "How much would you like to transfer, in GBP?\nExample: 450 or 450.50"
	staleActionText = "This action is no longer valid for this transaction."
)

// Handler consumes the long-polling update stream and routes each update to
// a use case. One goroutine per update; updates for the same chat may race,
// the store-level conditional transitions keep that safe.
type Handler struct {
	api        *tgbotapi.BotAPI
	sender     Sender
	lifecycle  *interactor.Lifecycle
	catalogue  *interactor.Catalogue
	calculator *interactor.QuoteCalculator
	sessions   *session.Tracker
	pricing    config.Pricing
	logger     *zerolog.Logger
}

func NewHandler(
	api *tgbotapi.BotAPI,
	sender Sender,
	lifecycle *interactor.Lifecycle,
	catalogue *interactor.Catalogue,
	calculator *interactor.QuoteCalculator,
	sessions *session.Tracker,
	pricing config.Pricing,
) *Handler {
	l := log.GetLogger()
	return &Handler{
		api:        api,
		sender:     sender,
		lifecycle:  lifecycle,
		catalogue:  catalogue,
		calculator: calculator,
		sessions:   sessions,
		pricing:    pricing,
		logger:     &l,
	}
}

// Run blocks until ctx is cancelled, draining the update stream.
func (h *Handler) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := h.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						h.logger.Error().Interface("panic", r).Msg(apperrors.ErrFailedProcessUpdate)
					}
				}()
				h.dispatch(ctx, u)
			}(update)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if len(msg.Photo) > 0 {
		h.handleReceiptPhoto(ctx, msg)
		return
	}

	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}

	switch ClassifyText(msg.Text, h.sessions.AwaitingAmount(chatID)) {
	case IntentShowRates:
		h.sendRatesMenu(chatID)
	case IntentStartTransfer:
		h.sessions.AwaitAmount(chatID)
		h.reply(chatID, askAmountText)
	case IntentHelp:
		h.reply(chatID, helpText)
	case IntentAmountEntry:
		h.handleAmountEntry(chatID, msg.Text)
	case IntentFreeText:
		h.handleFreeText(ctx, msg)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		h.sessions.Clear(chatID)
		if err := h.sender.SendReplyMenu(chatID, welcomeText, MenuLabels()); err != nil {
			h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg(apperrors.ErrFailedProcessUpdate)
		}
	case "help":
		h.reply(chatID, helpText)
	case "admin":
		h.handleAdminMenu(chatID, msg.From.ID)
	case "add_account":
		h.handleAddAccount(ctx, msg)
	default:
		h.reply(chatID, "Unknown command. Use the menu below or /help.")
	}
}

func (h *Handler) handleAdminMenu(chatID, actorID int64) {
	if !h.lifecycle.IsOperator(actorID) {
		return
	}
	actions := []Action{
		{Label: "📋 Pending transactions", Data: EncodeCallback(CallbackOpPending)},
		{Label: "🏦 Receiving accounts", Data: EncodeCallback(CallbackOpAccounts)},
		{Label: "➕ Add an account", Data: EncodeCallback(CallbackOpAddHelp)},
	}
	if err := h.sender.SendActions(chatID, "Operator menu", actions); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) handleAddAccount(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	fields := strings.Fields(msg.CommandArguments())

	var bank, sortCode, accountNumber, holderName string
	if len(fields) >= 4 {
		bank = fields[0]
		sortCode = fields[1]
		accountNumber = fields[2]
		holderName = strings.Join(fields[3:], " ")
	}

	acc, err := h.catalogue.Register(ctx, msg.From.ID, bank, sortCode, accountNumber, holderName)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return
		}
		if apperrors.IsValidation(err) {
			h.reply(chatID, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		h.reply(chatID, "Could not save the account. Try again.")
		return
	}
	h.reply(chatID, fmt.Sprintf("Account #%d saved: %s / %s", acc.ID, acc.Bank, acc.AccountNumber))
}

func (h *Handler) handleAmountEntry(chatID int64, text string) {
	quote, err := h.calculator.Quote(text)
	if err != nil {
		if apperrors.IsValidation(err) {
			h.reply(chatID, "That doesn't look like an amount. "+askAmountText)
			return
		}
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		return
	}
	h.sessions.Clear(chatID)

	text = fmt.Sprintf(
		"Your quote:\nAmount: £%s\nFee: £%s\nTotal to pay: £%s\nYou will receive: %s IRT\n\nConfirm to get our account details.",
		quote.Amount.StringFixed(2), quote.Fee.StringFixed(2),
		quote.FinalAmount.StringFixed(2), groupDigits(quote.LocalAmount),
	)
	actions := []Action{
		{Label: "✅ Confirm", Data: EncodeCallback(CallbackQuoteConfirm, quote.Amount.String())},
		{Label: "❌ Cancel", Data: EncodeCallback(CallbackQuoteCancel)},
	}
	if err := h.sender.SendActions(chatID, text, actions); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

// handleFreeText treats unclassified customer text as beneficiary details
// when a transaction of theirs is waiting for them; otherwise it nudges the
// customer back to the menu.
func (h *Handler) handleFreeText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	tx, err := h.lifecycle.SubmitRecipientInfo(ctx, msg.From.ID, msg.Text)
	if err != nil {
		if apperrors.IsValidation(err) {
			h.reply(chatID, "Please send the beneficiary details as separate lines:\nBeneficiary name\nAccount / card number\nIBAN (if available)")
			return
		}
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		return
	}
	if tx == nil {
		h.reply(chatID, "I didn't understand that. Use the menu below or /help.")
	}
}

func (h *Handler) handleReceiptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Largest rendition carries the same file, highest resolution.
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	origin := models.MessageRef{ChatID: chatID, MessageID: msg.MessageID}

	tx, err := h.lifecycle.SubmitReceipt(ctx, msg.From.ID, fileID, origin)
	if err != nil {
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		return
	}
	if tx == nil {
		h.reply(chatID, "I wasn't expecting a receipt from you right now. Start a transfer first.")
	}
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	cb, err := ParseCallback(q.Data)
	if err != nil {
		h.logger.Warn().Err(err).Str("data", q.Data).Msg(apperrors.ErrFailedProcessUpdate)
		h.ack(q.ID)
		return
	}

	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID
	actorID := q.From.ID

	switch cb.Kind {
	case CallbackRateCash:
		h.ack(q.ID)
		h.editTo(chatID, messageID, fmt.Sprintf(
			"💵 Cash rates today:\nWe buy: %s IRT / £1\nWe sell: %s IRT / £1",
			h.pricing.CashBuyRate, h.pricing.CashSellRate))
	case CallbackRateTransfer:
		h.ack(q.ID)
		h.editTo(chatID, messageID, fmt.Sprintf(
			"🏦 Transfer rates today:\nWe buy: %s IRT / £1\nWe sell: %s IRT / £1",
			h.pricing.TransferBuyRate, h.pricing.TransferSellRate))

	case CallbackQuoteConfirm:
		h.handleQuoteConfirm(ctx, q, cb.Amount)
	case CallbackQuoteCancel:
		h.ack(q.ID)
		h.editTo(chatID, messageID, "Quote cancelled. Tap \""+LabelStartTransfer+"\" to start over.")

	case CallbackOpPending:
		h.handleOpPending(ctx, q)
	case CallbackOpAccounts:
		h.handleOpAccounts(ctx, q)
	case CallbackOpAddHelp:
		h.ack(q.ID)
		if h.lifecycle.IsOperator(actorID) {
			h.reply(chatID, "Usage:\n/add_account BANK SORTCODE ACCOUNTNUMBER NAME")
		}
	case CallbackOpDetail:
		h.handleOpDetail(ctx, q, cb.TxID)
	case CallbackOpSendAcc:
		h.handleOpSendAcc(ctx, q, cb.TxID)
	case CallbackOpChooseAcc:
		h.handleOpChooseAcc(ctx, q, cb.TxID, cb.AccountID)
	case CallbackOpCancel:
		h.handleOpTransition(ctx, q, cb.TxID, h.lifecycle.Cancel,
			"Transaction #%d cancelled.")
	case CallbackOpApprove:
		h.handleOpTransition(ctx, q, cb.TxID, h.lifecycle.ApproveReceipt,
			"Transaction #%d approved. Waiting for beneficiary details.")
	case CallbackOpReject:
		h.handleOpTransition(ctx, q, cb.TxID, h.lifecycle.RejectReceipt,
			"Transaction #%d rejected.")
	case CallbackOpSettled:
		h.handleOpTransition(ctx, q, cb.TxID, h.lifecycle.MarkSettled,
			"Transaction #%d marked as settled.")
	}
}

func (h *Handler) handleQuoteConfirm(ctx context.Context, q *tgbotapi.CallbackQuery, rawAmount string) {
	chatID := q.Message.Chat.ID

	// The quote is recomputed from the amount carried in the button: the
	// calculator is pure and its constants are static for the process.
	quote, err := h.calculator.Quote(rawAmount)
	if err != nil {
		h.answer(q.ID, staleActionText, true)
		return
	}

	customer := models.Customer{
		ID:       q.From.ID,
		Username: q.From.UserName,
		FullName: strings.TrimSpace(q.From.FirstName + " " + q.From.LastName),
	}
	tx, err := h.lifecycle.ConfirmQuote(ctx, customer, quote)
	if err != nil {
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		h.answer(q.ID, "Something went wrong. Please try again.", true)
		return
	}

	h.ack(q.ID)
	h.editTo(chatID, q.Message.MessageID, fmt.Sprintf(
		"Request #%d registered ✅\nTotal to pay: £%s\nWe will send you our account details shortly.",
		tx.ID, tx.FinalAmount.StringFixed(2)))
}

func (h *Handler) handleOpPending(ctx context.Context, q *tgbotapi.CallbackQuery) {
	rows, err := h.lifecycle.ListPending(ctx, q.From.ID)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			h.ack(q.ID)
			return
		}
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		h.answer(q.ID, "Could not load pending transactions.", true)
		return
	}
	h.ack(q.ID)

	if len(rows) == 0 {
		h.reply(q.Message.Chat.ID, "No transactions waiting for account details.")
		return
	}
	actions := make([]Action, 0, len(rows))
	for _, r := range rows {
		label := fmt.Sprintf("#%d @%s £%s", r.ID, r.Username, r.FinalAmount.StringFixed(2))
		actions = append(actions, Action{
			Label: label,
			Data:  EncodeCallback(CallbackOpDetail, strconv.FormatInt(r.ID, 10)),
		})
	}
	if err := h.sender.SendActions(q.Message.Chat.ID, "Waiting for account details:", actions); err != nil {
		h.logger.Warn().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) handleOpAccounts(ctx context.Context, q *tgbotapi.CallbackQuery) {
	accs, err := h.catalogue.List(ctx, q.From.ID)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			h.ack(q.ID)
			return
		}
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		h.answer(q.ID, "Could not load accounts.", true)
		return
	}
	h.ack(q.ID)

	if len(accs) == 0 {
		h.reply(q.Message.Chat.ID, "No receiving accounts yet. Use /add_account.")
		return
	}
	var b strings.Builder
	b.WriteString("Receiving accounts:\n")
	for _, a := range accs {
		fmt.Fprintf(&b, "#%d %s %s %s (%s)\n", a.ID, a.Bank, a.SortCode, a.AccountNumber, a.HolderName)
	}
	h.reply(q.Message.Chat.ID, b.String())
}

func (h *Handler) handleOpDetail(ctx context.Context, q *tgbotapi.CallbackQuery, txID int64) {
	tx, err := h.lifecycle.Get(ctx, q.From.ID, txID)
	if err != nil {
		h.answerOpError(q, err)
		return
	}
	h.ack(q.ID)

	text := fmt.Sprintf(
		"Transaction #%d\nCustomer: %s\nAmount: £%s + £%s fee = £%s\nEquivalent: %s IRT\nStatus: %s",
		tx.ID, tx.DisplayCustomer(), tx.Amount.StringFixed(2), tx.Fee.StringFixed(2),
		tx.FinalAmount.StringFixed(2), groupDigits(tx.LocalAmount), tx.Status,
	)
	if tx.Status != models.StatusAwaitingDestinationAccount {
		h.reply(q.Message.Chat.ID, text)
		return
	}
	actions := []Action{
		{Label: "Send account details", Data: EncodeCallback(CallbackOpSendAcc, strconv.FormatInt(tx.ID, 10))},
		{Label: "❌ Cancel request", Data: EncodeCallback(CallbackOpCancel, strconv.FormatInt(tx.ID, 10))},
	}
	if err := h.sender.SendActions(q.Message.Chat.ID, text, actions); err != nil {
		h.logger.Warn().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

// handleOpSendAcc lists the receiving accounts as buttons so the operator
// picks which one the customer should pay into.
func (h *Handler) handleOpSendAcc(ctx context.Context, q *tgbotapi.CallbackQuery, txID int64) {
	accs, err := h.catalogue.List(ctx, q.From.ID)
	if err != nil {
		h.answerOpError(q, err)
		return
	}
	h.ack(q.ID)

	if len(accs) == 0 {
		h.reply(q.Message.Chat.ID, "No receiving accounts yet. Use /add_account first.")
		return
	}
	actions := make([]Action, 0, len(accs))
	for _, a := range accs {
		actions = append(actions, Action{
			Label: fmt.Sprintf("#%d %s %s", a.ID, a.Bank, a.AccountNumber),
			Data: EncodeCallback(CallbackOpChooseAcc,
				strconv.FormatInt(txID, 10), strconv.FormatInt(a.ID, 10)),
		})
	}
	text := fmt.Sprintf("Pick the account for transaction #%d:", txID)
	if err := h.sender.SendActions(q.Message.Chat.ID, text, actions); err != nil {
		h.logger.Warn().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) handleOpChooseAcc(ctx context.Context, q *tgbotapi.CallbackQuery, txID, accountID int64) {
	tx, err := h.lifecycle.AttachAccount(ctx, q.From.ID, txID, accountID)
	if err != nil {
		h.answerOpError(q, err)
		return
	}
	h.ack(q.ID)
	h.editTo(q.Message.Chat.ID, q.Message.MessageID,
		fmt.Sprintf("Account details sent for transaction #%d. Waiting for the receipt.", tx.ID))
}

func (h *Handler) handleOpTransition(
	ctx context.Context,
	q *tgbotapi.CallbackQuery,
	txID int64,
	transition func(context.Context, int64, int64) (*models.Transaction, error),
	doneFormat string,
) {
	tx, err := transition(ctx, q.From.ID, txID)
	if err != nil {
		h.answerOpError(q, err)
		return
	}
	h.ack(q.ID)
	h.editTo(q.Message.Chat.ID, q.Message.MessageID, fmt.Sprintf(doneFormat, tx.ID))
}

// answerOpError maps operator action failures onto callback answers.
// Unauthorized presses are silently acknowledged and dropped.
func (h *Handler) answerOpError(q *tgbotapi.CallbackQuery, err error) {
	switch {
	case apperrors.IsUnauthorized(err):
		h.ack(q.ID)
	case apperrors.IsStaleTransition(err), apperrors.IsNotFound(err):
		h.answer(q.ID, staleActionText, true)
	default:
		h.logger.Error().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
		h.answer(q.ID, "Something went wrong. Please try again.", true)
	}
}

func (h *Handler) sendRatesMenu(chatID int64) {
	actions := []Action{
		{Label: "💵 Cash", Data: EncodeCallback(CallbackRateCash)},
		{Label: "🏦 Transfer", Data: EncodeCallback(CallbackRateTransfer)},
	}
	if err := h.sender.SendActions(chatID, "Which rates would you like?", actions); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) reply(chatID int64, text string) {
	if err := h.sender.SendText(chatID, text); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) editTo(chatID int64, messageID int, text string) {
	if err := h.sender.EditText(chatID, messageID, text); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) ack(callbackID string) {
	if err := h.sender.AnswerCallback(callbackID, "", false); err != nil {
		h.logger.Warn().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func (h *Handler) answer(callbackID, text string, alert bool) {
	if err := h.sender.AnswerCallback(callbackID, text, alert); err != nil {
		h.logger.Warn().Err(err).Msg(apperrors.ErrFailedProcessUpdate)
	}
}

func groupDigits(v int64) string {
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
