package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReceivingAccount is a catalogue entry an operator can offer to a customer.
// The catalogue is append-only: entries are never updated or deleted.
type ReceivingAccount struct {
	ID            int64     `db:"id"`
	Bank          string    `db:"bank"`
	SortCode      string    `db:"sort_code"`
	AccountNumber string    `db:"account_number"`
	HolderName    string    `db:"holder_name"`
	CreatedAt     time.Time `db:"created_at"`
}

// DestinationText renders the snapshot sent to the customer once an operator
// attaches this account to a transaction.
func (a *ReceivingAccount) DestinationText(finalAmount decimal.Decimal) string {
	return fmt.Sprintf(
		"£%s\nBANK: %s\nSort code: %s\nAccount number: %s\nName: %s",
		finalAmount.StringFixed(2), a.Bank, a.SortCode, a.AccountNumber, a.HolderName,
	)
}
