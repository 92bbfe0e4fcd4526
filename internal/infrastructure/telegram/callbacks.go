package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// CallbackKind enumerates every inline button the bot ever renders.
type CallbackKind string

const (
	CallbackRateCash     CallbackKind = "rate_cash"
	CallbackRateTransfer CallbackKind = "rate_transfer"
	CallbackQuoteConfirm CallbackKind = "quote_confirm"
	CallbackQuoteCancel  CallbackKind = "quote_cancel"
	CallbackOpPending    CallbackKind = "op_pending"
	CallbackOpAccounts   CallbackKind = "op_accounts"
	CallbackOpAddHelp    CallbackKind = "op_add_help"
	CallbackOpDetail     CallbackKind = "op_tx"
	CallbackOpSendAcc    CallbackKind = "op_sendacc"
	CallbackOpChooseAcc  CallbackKind = "op_chooseacc"
	CallbackOpCancel     CallbackKind = "op_cancel"
	CallbackOpApprove    CallbackKind = "op_approve"
	CallbackOpReject     CallbackKind = "op_reject"
	CallbackOpSettled    CallbackKind = "op_settled"
)

// Callback is a parsed button press. TxID/AccountID/Amount are populated
// according to the kind.
type Callback struct {
	Kind      CallbackKind
	TxID      int64
	AccountID int64
	Amount    string
}

// EncodeCallback renders "<kind>" or "<kind>:<arg>[:<arg>]".
func EncodeCallback(kind CallbackKind, args ...string) string {
	if len(args) == 0 {
		return string(kind)
	}
	return string(kind) + ":" + strings.Join(args, ":")
}

// ParseCallback decodes callback data back into a Callback. Unknown or
// malformed data is an error; the press is then acknowledged and dropped.
func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(data, ":")
	kind := CallbackKind(parts[0])
	args := parts[1:]

	cb := Callback{Kind: kind}
	switch kind {
	case CallbackRateCash, CallbackRateTransfer, CallbackQuoteCancel,
		CallbackOpPending, CallbackOpAccounts, CallbackOpAddHelp:
		return cb, nil

	case CallbackQuoteConfirm:
		if len(args) != 1 {
			return cb, fmt.Errorf("callback %s: want amount argument", kind)
		}
		cb.Amount = args[0]
		return cb, nil

	case CallbackOpDetail, CallbackOpSendAcc, CallbackOpCancel,
		CallbackOpApprove, CallbackOpReject, CallbackOpSettled:
		if len(args) != 1 {
			return cb, fmt.Errorf("callback %s: want transaction id", kind)
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return cb, fmt.Errorf("callback %s: bad transaction id %q", kind, args[0])
		}
		cb.TxID = id
		return cb, nil

	case CallbackOpChooseAcc:
		if len(args) != 2 {
			return cb, fmt.Errorf("callback %s: want transaction and account ids", kind)
		}
		txID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return cb, fmt.Errorf("callback %s: bad transaction id %q", kind, args[0])
		}
		accID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return cb, fmt.Errorf("callback %s: bad account id %q", kind, args[1])
		}
		cb.TxID = txID
		cb.AccountID = accID
		return cb, nil
	}

	return cb, fmt.Errorf("unknown callback %q", data)
}
