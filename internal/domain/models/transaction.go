package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the closed set of lifecycle states. Status is only
// mutated through the transitions defined by the lifecycle interactor.
type TransactionStatus string

const (
	StatusAwaitingDestinationAccount TransactionStatus = "AWAITING_DESTINATION_ACCOUNT"
	StatusAwaitingReceipt            TransactionStatus = "AWAITING_RECEIPT"
	StatusAwaitingRecipientInfo      TransactionStatus = "AWAITING_RECIPIENT_INFO"
	StatusReceiptRejected            TransactionStatus = "RECEIPT_REJECTED"
	StatusReadyToSettle              TransactionStatus = "READY_TO_SETTLE"
	StatusDone                       TransactionStatus = "DONE"
	StatusCancelledByOperator        TransactionStatus = "CANCELLED_BY_OPERATOR"
)

// Terminal reports whether no further transition can leave the status.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case StatusReceiptRejected, StatusDone, StatusCancelledByOperator:
		return true
	}
	return false
}

type Transaction struct {
	ID          int64             `db:"id"`
	CustomerID  int64             `db:"customer_id"`
	Username    string            `db:"username"`
	FullName    string            `db:"full_name"`
	Amount      decimal.Decimal   `db:"amount"`
	Fee         decimal.Decimal   `db:"fee"`
	FinalAmount decimal.Decimal   `db:"final_amount"`
	LocalAmount int64             `db:"local_amount"`
	Status      TransactionStatus `db:"status"`
	// DestinationText is the frozen, human-readable snapshot of the
	// receiving account sent to the customer. Set once, never recomputed.
	DestinationText string        `db:"destination_text"`
	ReceiptFileID   string        `db:"receipt_file_id"`
	Recipient       RecipientInfo `db:"-"`
	CreatedAt       time.Time     `db:"created_at"`
}

// MessageRef points at a chat message so a submitted receipt photo can be
// forwarded to operators by reference.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// RecipientInfo is the destination-country beneficiary triple. It is stored
// as a unit: either fully set or fully unset.
type RecipientInfo struct {
	Name     string
	Account  string
	BankCode string
}

func (r RecipientInfo) IsSet() bool {
	return r.Name != ""
}

// DisplayCustomer renders the operator-facing customer reference, preferring
// the handle, then the display name, then the bare id.
func (t *Transaction) DisplayCustomer() string {
	if t.Username != "" {
		return "@" + t.Username
	}
	if t.FullName != "" {
		return fmt.Sprintf("%s (ID: %d)", t.FullName, t.CustomerID)
	}
	return fmt.Sprintf("ID: %d", t.CustomerID)
}
