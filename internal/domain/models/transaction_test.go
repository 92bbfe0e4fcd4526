package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusReceiptRejected.Terminal())
	assert.True(t, StatusCancelledByOperator.Terminal())

	assert.False(t, StatusAwaitingDestinationAccount.Terminal())
	assert.False(t, StatusAwaitingReceipt.Terminal())
	assert.False(t, StatusAwaitingRecipientInfo.Terminal())
	assert.False(t, StatusReadyToSettle.Terminal())
}

func TestDisplayCustomerPrefersUsername(t *testing.T) {
	tx := &Transaction{CustomerID: 555, Username: "alice", FullName: "Alice A"}
	assert.Equal(t, "@alice", tx.DisplayCustomer())

	tx.Username = ""
	assert.Equal(t, "Alice A (ID: 555)", tx.DisplayCustomer())

	tx.FullName = ""
	assert.Equal(t, "ID: 555", tx.DisplayCustomer())
}

func TestRecipientInfoIsSet(t *testing.T) {
	assert.False(t, RecipientInfo{}.IsSet())
	assert.True(t, RecipientInfo{Name: "Reza"}.IsSet())
}

func TestDestinationTextRendering(t *testing.T) {
	acc := &ReceivingAccount{
		Bank:          "Monzo",
		SortCode:      "04-00-04",
		AccountNumber: "12345678",
		HolderName:    "E Ltd",
	}

	got := acc.DestinationText(decimal.NewFromInt(410))

	assert.Equal(t,
		"£410.00\nBANK: Monzo\nSort code: 04-00-04\nAccount number: 12345678\nName: E Ltd",
		got)
}
