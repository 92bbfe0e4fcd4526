package interactor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/domain/repositories"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
)

const (
	operatorID = int64(100)
	customerID = int64(555)
	strangerID = int64(999)
)

type lifecycleFixture struct {
	transactions *MockTransactionRepository
	accounts     *MockAccountRepository
	notifier     *MockNotifier
	lifecycle    *Lifecycle
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		transactions: new(MockTransactionRepository),
		accounts:     new(MockAccountRepository),
		notifier:     new(MockNotifier),
	}
	f.lifecycle = NewLifecycle(f.transactions, f.accounts, f.notifier, []int64{operatorID})
	return f
}

func sampleTransaction(status models.TransactionStatus) *models.Transaction {
	return &models.Transaction{
		ID:          7,
		CustomerID:  customerID,
		Username:    "alice",
		Amount:      decimal.NewFromInt(400),
		Fee:         decimal.NewFromInt(10),
		FinalAmount: decimal.NewFromInt(410),
		LocalAmount: 54_120_000,
		Status:      status,
	}
}

func TestConfirmQuoteCreatesAndNotifies(t *testing.T) {
	f := newLifecycleFixture()

	f.transactions.On("Create", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Status == models.StatusAwaitingDestinationAccount &&
			tx.CustomerID == customerID &&
			tx.FinalAmount.Equal(decimal.NewFromInt(410))
	})).Return(int64(7), nil)
	f.notifier.On("TransactionCreated", mock.Anything).Return()

	customer := models.Customer{ID: customerID, Username: "alice"}
	quote := models.Quote{
		Amount:      decimal.NewFromInt(400),
		Fee:         decimal.NewFromInt(10),
		FinalAmount: decimal.NewFromInt(410),
		LocalAmount: 54_120_000,
	}

	tx, err := f.lifecycle.ConfirmQuote(context.Background(), customer, quote)
	require.NoError(t, err)

	assert.Equal(t, int64(7), tx.ID)
	assert.Equal(t, models.StatusAwaitingDestinationAccount, tx.Status)
	f.transactions.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAttachAccountFreezesDestinationText(t *testing.T) {
	f := newLifecycleFixture()

	pending := sampleTransaction(models.StatusAwaitingDestinationAccount)
	attached := sampleTransaction(models.StatusAwaitingReceipt)
	acc := &models.ReceivingAccount{
		ID: 3, Bank: "Monzo", SortCode: "04-00-04",
		AccountNumber: "12345678", HolderName: "E Ltd",
	}
	wantText := acc.DestinationText(pending.FinalAmount)
	attached.DestinationText = wantText

	f.transactions.On("GetByID", mock.Anything, int64(7)).Return(pending, nil).Once()
	f.accounts.On("GetByID", mock.Anything, int64(3)).Return(acc, nil)
	f.transactions.On("AttachDestination", mock.Anything, int64(7), wantText).Return(nil)
	f.transactions.On("GetByID", mock.Anything, int64(7)).Return(attached, nil).Once()
	f.notifier.On("DestinationSent", attached).Return()

	tx, err := f.lifecycle.AttachAccount(context.Background(), operatorID, 7, 3)
	require.NoError(t, err)

	assert.Equal(t, models.StatusAwaitingReceipt, tx.Status)
	assert.Contains(t, tx.DestinationText, "£410.00")
	assert.Contains(t, tx.DestinationText, "Monzo")
	f.transactions.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAttachAccountStaleTransition(t *testing.T) {
	f := newLifecycleFixture()

	pending := sampleTransaction(models.StatusAwaitingReceipt)
	acc := &models.ReceivingAccount{ID: 3, Bank: "Monzo"}

	f.transactions.On("GetByID", mock.Anything, int64(7)).Return(pending, nil)
	f.accounts.On("GetByID", mock.Anything, int64(3)).Return(acc, nil)
	f.transactions.On("AttachDestination", mock.Anything, int64(7), mock.Anything).
		Return(apperrors.NewStaleTransitionError())

	_, err := f.lifecycle.AttachAccount(context.Background(), operatorID, 7, 3)
	assert.True(t, apperrors.IsStaleTransition(err))
	f.notifier.AssertNotCalled(t, "DestinationSent", mock.Anything)
}

func TestOperatorActionsRejectUnauthorizedActor(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	_, err := f.lifecycle.AttachAccount(ctx, strangerID, 7, 3)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.lifecycle.Cancel(ctx, strangerID, 7)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.lifecycle.ApproveReceipt(ctx, strangerID, 7)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.lifecycle.RejectReceipt(ctx, strangerID, 7)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.lifecycle.MarkSettled(ctx, strangerID, 7)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.lifecycle.ListPending(ctx, strangerID)
	assert.True(t, apperrors.IsUnauthorized(err))

	// nothing may reach the store
	f.transactions.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.transactions.AssertNotCalled(t, "AttachDestination", mock.Anything, mock.Anything, mock.Anything)
	f.transactions.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCancelAllowedOnlyFromEarlyStates(t *testing.T) {
	f := newLifecycleFixture()

	cancelled := sampleTransaction(models.StatusCancelledByOperator)

	f.transactions.On("UpdateStatus", mock.Anything, int64(7), models.StatusCancelledByOperator,
		[]models.TransactionStatus{models.StatusAwaitingDestinationAccount, models.StatusAwaitingReceipt}).
		Return(nil)
	f.transactions.On("GetByID", mock.Anything, int64(7)).Return(cancelled, nil)
	f.notifier.On("Cancelled", cancelled).Return()

	tx, err := f.lifecycle.Cancel(context.Background(), operatorID, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelledByOperator, tx.Status)
	f.transactions.AssertExpectations(t)
}

func TestSubmitReceiptWithoutActiveTransaction(t *testing.T) {
	f := newLifecycleFixture()

	f.transactions.On("LatestByCustomerAndStatus", mock.Anything, customerID, models.StatusAwaitingReceipt).
		Return(nil, nil)

	tx, err := f.lifecycle.SubmitReceipt(context.Background(), customerID, "photo-1", models.MessageRef{})
	require.NoError(t, err)
	assert.Nil(t, tx)
	f.notifier.AssertNotCalled(t, "ReceiptSubmitted", mock.Anything, mock.Anything)
}

func TestSubmitReceiptStoresHandleAndKeepsStatus(t *testing.T) {
	f := newLifecycleFixture()

	waiting := sampleTransaction(models.StatusAwaitingReceipt)
	origin := models.MessageRef{ChatID: customerID, MessageID: 42}

	f.transactions.On("LatestByCustomerAndStatus", mock.Anything, customerID, models.StatusAwaitingReceipt).
		Return(waiting, nil)
	f.transactions.On("SetReceipt", mock.Anything, int64(7), "photo-1").Return(nil)
	f.notifier.On("ReceiptSubmitted", waiting, origin).Return()

	tx, err := f.lifecycle.SubmitReceipt(context.Background(), customerID, "photo-1", origin)
	require.NoError(t, err)

	assert.Equal(t, "photo-1", tx.ReceiptFileID)
	assert.Equal(t, models.StatusAwaitingReceipt, tx.Status)
	f.transactions.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestApproveThenRejectLosesRace(t *testing.T) {
	f := newLifecycleFixture()

	approved := sampleTransaction(models.StatusAwaitingRecipientInfo)

	f.transactions.On("UpdateStatus", mock.Anything, int64(7), models.StatusAwaitingRecipientInfo,
		[]models.TransactionStatus{models.StatusAwaitingReceipt}).Return(nil).Once()
	f.transactions.On("GetByID", mock.Anything, int64(7)).Return(approved, nil)
	f.notifier.On("ReceiptApproved", approved).Return()

	_, err := f.lifecycle.ApproveReceipt(context.Background(), operatorID, 7)
	require.NoError(t, err)

	// the second operator presses reject after the approval committed
	f.transactions.On("UpdateStatus", mock.Anything, int64(7), models.StatusReceiptRejected,
		[]models.TransactionStatus{models.StatusAwaitingReceipt}).
		Return(apperrors.NewStaleTransitionError()).Once()

	_, err = f.lifecycle.RejectReceipt(context.Background(), operatorID, 7)
	assert.True(t, apperrors.IsStaleTransition(err))
	f.notifier.AssertNotCalled(t, "ReceiptRejected", mock.Anything)
}

func TestSubmitRecipientInfoParsesLines(t *testing.T) {
	f := newLifecycleFixture()

	waiting := sampleTransaction(models.StatusAwaitingRecipientInfo)
	want := models.RecipientInfo{Name: "Reza Amiri", Account: "6037-9912-3456-7890", BankCode: "IR820540102680020817909002"}

	f.transactions.On("LatestByCustomerAndStatus", mock.Anything, customerID, models.StatusAwaitingRecipientInfo).
		Return(waiting, nil)
	f.transactions.On("SetRecipientInfo", mock.Anything, int64(7), want).Return(nil)
	f.notifier.On("RecipientInfoSubmitted", waiting).Return()

	text := "Reza Amiri\n6037-9912-3456-7890\n\nIR820540102680020817909002\n"
	tx, err := f.lifecycle.SubmitRecipientInfo(context.Background(), customerID, text)
	require.NoError(t, err)

	assert.Equal(t, want, tx.Recipient)
	assert.Equal(t, models.StatusReadyToSettle, tx.Status)
	f.transactions.AssertExpectations(t)
}

func TestSubmitRecipientInfoNameOnly(t *testing.T) {
	f := newLifecycleFixture()

	waiting := sampleTransaction(models.StatusAwaitingRecipientInfo)

	f.transactions.On("LatestByCustomerAndStatus", mock.Anything, customerID, models.StatusAwaitingRecipientInfo).
		Return(waiting, nil)
	f.transactions.On("SetRecipientInfo", mock.Anything, int64(7),
		models.RecipientInfo{Name: "Reza Amiri"}).Return(nil)
	f.notifier.On("RecipientInfoSubmitted", waiting).Return()

	tx, err := f.lifecycle.SubmitRecipientInfo(context.Background(), customerID, "Reza Amiri")
	require.NoError(t, err)
	assert.Equal(t, "Reza Amiri", tx.Recipient.Name)
	assert.Empty(t, tx.Recipient.Account)
}

func TestSubmitRecipientInfoEmptyMessage(t *testing.T) {
	f := newLifecycleFixture()

	waiting := sampleTransaction(models.StatusAwaitingRecipientInfo)

	f.transactions.On("LatestByCustomerAndStatus", mock.Anything, customerID, models.StatusAwaitingRecipientInfo).
		Return(waiting, nil)

	_, err := f.lifecycle.SubmitRecipientInfo(context.Background(), customerID, "  \n \n")
	assert.True(t, apperrors.IsValidation(err))
	f.transactions.AssertNotCalled(t, "SetRecipientInfo", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRecipientInfoWithoutWaitingTransaction(t *testing.T) {
	f := newLifecycleFixture()

	f.transactions.On("LatestByCustomerAndStatus", mock.Anything, customerID, models.StatusAwaitingRecipientInfo).
		Return(nil, nil)

	tx, err := f.lifecycle.SubmitRecipientInfo(context.Background(), customerID, "anything")
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestMarkSettledCompletesTransaction(t *testing.T) {
	f := newLifecycleFixture()

	done := sampleTransaction(models.StatusDone)

	f.transactions.On("UpdateStatus", mock.Anything, int64(7), models.StatusDone,
		[]models.TransactionStatus{models.StatusReadyToSettle}).Return(nil)
	f.transactions.On("GetByID", mock.Anything, int64(7)).Return(done, nil)
	f.notifier.On("Settled", done).Return()

	tx, err := f.lifecycle.MarkSettled(context.Background(), operatorID, 7)
	require.NoError(t, err)
	assert.True(t, tx.Status.Terminal())
}

func TestListPendingForOperator(t *testing.T) {
	f := newLifecycleFixture()

	rows := []repositories.PendingTransactionRow{
		{ID: 7, Username: "alice", FinalAmount: decimal.NewFromInt(410), LocalAmount: 54_120_000},
	}
	f.transactions.On("ListByStatus", mock.Anything, models.StatusAwaitingDestinationAccount).
		Return(rows, nil)

	got, err := f.lifecycle.ListPending(context.Background(), operatorID)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
