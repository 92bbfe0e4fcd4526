package notify

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/infrastructure/telegram"
)

type sentMessage struct {
	chatID  int64
	text    string
	actions []telegram.Action
}

// fakeSender records deliveries and fails for chat ids in failFor.
type fakeSender struct {
	sent     []sentMessage
	forwards []int64
	failFor  map[int64]bool
}

func newFakeSender(failFor ...int64) *fakeSender {
	f := &fakeSender{failFor: make(map[int64]bool)}
	for _, id := range failFor {
		f.failFor[id] = true
	}
	return f
}

func (f *fakeSender) deliver(chatID int64, msg sentMessage) error {
	if f.failFor[chatID] {
		return errors.New("blocked by user")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) SendText(chatID int64, text string) error {
	return f.deliver(chatID, sentMessage{chatID: chatID, text: text})
}

func (f *fakeSender) SendActions(chatID int64, text string, actions []telegram.Action) error {
	return f.deliver(chatID, sentMessage{chatID: chatID, text: text, actions: actions})
}

func (f *fakeSender) SendReplyMenu(chatID int64, text string, _ []string) error {
	return f.deliver(chatID, sentMessage{chatID: chatID, text: text})
}

func (f *fakeSender) EditText(chatID int64, _ int, text string) error {
	return f.deliver(chatID, sentMessage{chatID: chatID, text: text})
}

func (f *fakeSender) ForwardPhoto(toChatID int64, _ models.MessageRef) error {
	if f.failFor[toChatID] {
		return errors.New("blocked by user")
	}
	f.forwards = append(f.forwards, toChatID)
	return nil
}

func (f *fakeSender) AnswerCallback(string, string, bool) error { return nil }

func (f *fakeSender) textsFor(chatID int64) []string {
	var out []string
	for _, m := range f.sent {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

func sampleTx() *models.Transaction {
	return &models.Transaction{
		ID:          7,
		CustomerID:  555,
		Username:    "alice",
		Amount:      decimal.NewFromInt(400),
		Fee:         decimal.NewFromInt(10),
		FinalAmount: decimal.NewFromInt(410),
		LocalAmount: 54_120_000,
		Status:      models.StatusAwaitingDestinationAccount,
	}
}

func TestTransactionCreatedReachesEveryOperator(t *testing.T) {
	sender := newFakeSender()
	n := NewNotifier(sender, []int64{100, 200})

	n.TransactionCreated(sampleTx())

	assert.Len(t, sender.textsFor(100), 1)
	assert.Len(t, sender.textsFor(200), 1)
	assert.Empty(t, sender.textsFor(555))

	msg := sender.sent[0]
	assert.Contains(t, msg.text, "#7")
	assert.Contains(t, msg.text, "£410.00")
	assert.Contains(t, msg.text, "54,120,000")
	assert.Len(t, msg.actions, 2)
	assert.Equal(t, "op_sendacc:7", msg.actions[0].Data)
}

func TestOneFailingOperatorDoesNotBlockOthers(t *testing.T) {
	sender := newFakeSender(100)
	n := NewNotifier(sender, []int64{100, 200, 300})

	n.TransactionCreated(sampleTx())

	assert.Empty(t, sender.textsFor(100))
	assert.Len(t, sender.textsFor(200), 1)
	assert.Len(t, sender.textsFor(300), 1)
}

func TestDestinationSentIncludesAdvisory(t *testing.T) {
	sender := newFakeSender()
	n := NewNotifier(sender, []int64{100})

	tx := sampleTx()
	tx.Status = models.StatusAwaitingReceipt
	tx.DestinationText = "£410.00\nBANK: Monzo\nSort code: 04-00-04\nAccount number: 12345678\nName: E Ltd"
	n.DestinationSent(tx)

	texts := sender.textsFor(555)
	assert.Len(t, texts, 2)
	assert.Equal(t, tx.DestinationText, texts[0])
	assert.Contains(t, texts[1], "30 minutes")
}

func TestReceiptSubmittedForwardsPhotoWithDecisionButtons(t *testing.T) {
	sender := newFakeSender()
	n := NewNotifier(sender, []int64{100, 200})

	origin := models.MessageRef{ChatID: 555, MessageID: 42}
	n.ReceiptSubmitted(sampleTx(), origin)

	assert.Equal(t, []int64{100, 200}, sender.forwards)
	assert.Len(t, sender.textsFor(555), 1)

	opMsgs := sender.textsFor(100)
	assert.Len(t, opMsgs, 1)
	for _, m := range sender.sent {
		if m.chatID != 100 || len(m.actions) == 0 {
			continue
		}
		assert.Equal(t, "op_approve:7", m.actions[0].Data)
		assert.Equal(t, "op_reject:7", m.actions[1].Data)
	}
}

func TestRecipientInfoSubmittedAsksForSettlement(t *testing.T) {
	sender := newFakeSender()
	n := NewNotifier(sender, []int64{100})

	tx := sampleTx()
	tx.Status = models.StatusReadyToSettle
	tx.Recipient = models.RecipientInfo{Name: "Reza Amiri", Account: "6037", BankCode: "IR82"}
	n.RecipientInfoSubmitted(tx)

	opMsgs := sender.textsFor(100)
	assert.Len(t, opMsgs, 1)
	assert.Contains(t, opMsgs[0], "Reza Amiri")

	for _, m := range sender.sent {
		if m.chatID == 100 {
			assert.Equal(t, "op_settled:7", m.actions[0].Data)
		}
	}
}

func TestCustomerTransitionsMessageTheCustomer(t *testing.T) {
	sender := newFakeSender()
	n := NewNotifier(sender, []int64{100})
	tx := sampleTx()

	n.Cancelled(tx)
	n.ReceiptApproved(tx)
	n.ReceiptRejected(tx)
	n.Settled(tx)

	assert.Len(t, sender.textsFor(555), 4)
	assert.Empty(t, sender.textsFor(100))
}
