package interactor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
)

var amountRegexp = regexp.MustCompile(`^\d+(\.\d+)?$`)

// QuoteCalculator turns a requested amount into a fee-adjusted quote. Pure:
// the constants are fixed at construction and the output is frozen into the
// transaction at confirmation time.
type QuoteCalculator struct {
	rate      decimal.Decimal
	threshold decimal.Decimal
	surcharge decimal.Decimal
}

func NewQuoteCalculator(rate, threshold, surcharge decimal.Decimal) *QuoteCalculator {
	return &QuoteCalculator{rate: rate, threshold: threshold, surcharge: surcharge}
}

// Quote parses the raw amount text and computes fee, final amount and the
// local-currency equivalent. A malformed amount yields a ValidationError so
// the caller can re-prompt.
func (q *QuoteCalculator) Quote(rawAmount string) (models.Quote, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(rawAmount, ",", ""))
	if !amountRegexp.MatchString(cleaned) {
		return models.Quote{}, apperrors.NewValidationError("please enter a plain number, e.g. 450 or 450.50")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return models.Quote{}, apperrors.NewValidationError("please enter a plain number, e.g. 450 or 450.50")
	}

	fee := decimal.Zero
	if amount.LessThan(q.threshold) {
		fee = q.surcharge
	}
	final := amount.Add(fee)

	return models.Quote{
		Amount:      amount,
		Fee:         fee,
		FinalAmount: final,
		LocalAmount: final.Mul(q.rate).Floor().IntPart(),
	}, nil
}
