package interactor

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/domain/repositories"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id int64, to models.TransactionStatus, from ...models.TransactionStatus) error {
	args := m.Called(ctx, id, to, from)
	return args.Error(0)
}

func (m *MockTransactionRepository) AttachDestination(ctx context.Context, id int64, destinationText string) error {
	args := m.Called(ctx, id, destinationText)
	return args.Error(0)
}

func (m *MockTransactionRepository) SetReceipt(ctx context.Context, id int64, fileID string) error {
	args := m.Called(ctx, id, fileID)
	return args.Error(0)
}

func (m *MockTransactionRepository) SetRecipientInfo(ctx context.Context, id int64, info models.RecipientInfo) error {
	args := m.Called(ctx, id, info)
	return args.Error(0)
}

func (m *MockTransactionRepository) LatestByCustomerAndStatus(ctx context.Context, customerID int64, status models.TransactionStatus) (*models.Transaction, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByStatus(ctx context.Context, status models.TransactionStatus) ([]repositories.PendingTransactionRow, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.PendingTransactionRow), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Insert(ctx context.Context, acc *models.ReceivingAccount) (int64, error) {
	args := m.Called(ctx, acc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.ReceivingAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReceivingAccount), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]models.ReceivingAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReceivingAccount), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) TransactionCreated(tx *models.Transaction) { m.Called(tx) }

func (m *MockNotifier) DestinationSent(tx *models.Transaction) { m.Called(tx) }

func (m *MockNotifier) Cancelled(tx *models.Transaction) { m.Called(tx) }

func (m *MockNotifier) ReceiptSubmitted(tx *models.Transaction, origin models.MessageRef) {
	m.Called(tx, origin)
}

func (m *MockNotifier) ReceiptApproved(tx *models.Transaction) { m.Called(tx) }

func (m *MockNotifier) ReceiptRejected(tx *models.Transaction) { m.Called(tx) }

func (m *MockNotifier) RecipientInfoSubmitted(tx *models.Transaction) { m.Called(tx) }

func (m *MockNotifier) Settled(tx *models.Transaction) { m.Called(tx) }
