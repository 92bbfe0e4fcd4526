package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/etebarfx/remit-bot/internal/domain/models"
)

const (
	SerializationError   = "40001"
	UniqueViolationError = "23505"
)

// TransactionRepository is the durable record of transactions. Every status
// mutation is a conditional update: it succeeds only when the row is still
// in the expected source status, so two conflicting transitions can never
// both apply. The loser gets a StaleTransitionError.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	// UpdateStatus moves id from one of the listed source statuses to the
	// target status.
	UpdateStatus(ctx context.Context, id int64, to models.TransactionStatus, from ...models.TransactionStatus) error
	// AttachDestination freezes the destination-account text and advances
	// AWAITING_DESTINATION_ACCOUNT to AWAITING_RECEIPT in one write.
	AttachDestination(ctx context.Context, id int64, destinationText string) error
	// SetReceipt stores the proof-of-payment handle. Status stays
	// AWAITING_RECEIPT; a later submission overwrites the handle.
	SetReceipt(ctx context.Context, id int64, fileID string) error
	// SetRecipientInfo stores the beneficiary triple and advances
	// AWAITING_RECIPIENT_INFO to READY_TO_SETTLE in one atomic write.
	SetRecipientInfo(ctx context.Context, id int64, info models.RecipientInfo) error
	// LatestByCustomerAndStatus routes an inbound free-text or photo message
	// to the customer's active transaction; ties break on the highest id.
	LatestByCustomerAndStatus(ctx context.Context, customerID int64, status models.TransactionStatus) (*models.Transaction, error)
	ListByStatus(ctx context.Context, status models.TransactionStatus) ([]PendingTransactionRow, error)
}

// PendingTransactionRow is the named shape of the operator pending-menu
// query; no positional tuples.
type PendingTransactionRow struct {
	ID          int64
	Username    string
	FinalAmount decimal.Decimal
	LocalAmount int64
}
