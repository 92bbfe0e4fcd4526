package telegram

import "strings"

// Intent is the closed set of tags a classified inbound message can carry.
// The dispatcher switches on tags, never on raw message text, so localized
// menu labels can never be mistaken for recipient data.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentShowRates
	IntentStartTransfer
	IntentHelp
	IntentAmountEntry
	IntentFreeText
)

// Main-menu labels. These are the only strings the classifier matches on.
const (
	LabelShowRates     = "📊 Today's rates"
	LabelStartTransfer = "💸 Transfer UK → IR"
	LabelHelp          = "📎 Help"
)

func MenuLabels() []string {
	return []string{LabelShowRates, LabelStartTransfer, LabelHelp}
}

// ClassifyText maps a plain text message to an intent tag. A pending amount
// entry takes precedence over everything except the menu labels, so a
// customer tapping a menu button mid-entry is not quoted the label text.
func ClassifyText(text string, awaitingAmount bool) Intent {
	switch strings.TrimSpace(text) {
	case LabelShowRates:
		return IntentShowRates
	case LabelStartTransfer:
		return IntentStartTransfer
	case LabelHelp:
		return IntentHelp
	}

	if awaitingAmount {
		return IntentAmountEntry
	}
	return IntentFreeText
}
