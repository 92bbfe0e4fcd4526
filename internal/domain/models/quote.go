package models

import "github.com/shopspring/decimal"

// Quote is the frozen output of the quote calculator. It is copied into the
// transaction at confirmation time; later rate changes never touch it.
type Quote struct {
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	FinalAmount decimal.Decimal
	LocalAmount int64
}

// Customer identifies the requesting chat user. Username and FullName are
// optional and used for operator-facing display only.
type Customer struct {
	ID       int64
	Username string
	FullName string
}
