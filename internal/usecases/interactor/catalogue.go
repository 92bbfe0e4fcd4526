package interactor

import (
	"context"
	"strings"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/domain/repositories"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
)

// Catalogue manages the append-only receiving-account catalogue. Both
// operations are operator-only.
type Catalogue struct {
	accounts  repositories.AccountRepository
	operators map[int64]struct{}
}

func NewCatalogue(accounts repositories.AccountRepository, operatorIDs []int64) *Catalogue {
	operators := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		operators[id] = struct{}{}
	}
	return &Catalogue{accounts: accounts, operators: operators}
}

func (c *Catalogue) authorize(actorID int64) error {
	if _, ok := c.operators[actorID]; !ok {
		return apperrors.NewUnauthorizedError()
	}
	return nil
}

// Register inserts a catalogue entry. All four fields are required; a
// malformed registration never inserts a row.
func (c *Catalogue) Register(ctx context.Context, operatorID int64, bank, sortCode, accountNumber, holderName string) (*models.ReceivingAccount, error) {
	if err := c.authorize(operatorID); err != nil {
		return nil, err
	}

	acc := &models.ReceivingAccount{
		Bank:          strings.TrimSpace(bank),
		SortCode:      strings.TrimSpace(sortCode),
		AccountNumber: strings.TrimSpace(accountNumber),
		HolderName:    strings.TrimSpace(holderName),
	}
	if acc.Bank == "" || acc.SortCode == "" || acc.AccountNumber == "" || acc.HolderName == "" {
		return nil, apperrors.NewValidationError("usage: /add_account BANK SORTCODE ACCOUNTNUMBER NAME")
	}

	id, err := c.accounts.Insert(ctx, acc)
	if err != nil {
		return nil, err
	}
	acc.ID = id
	return acc, nil
}

// List returns the catalogue for the operator menu.
func (c *Catalogue) List(ctx context.Context, operatorID int64) ([]models.ReceivingAccount, error) {
	if err := c.authorize(operatorID); err != nil {
		return nil, err
	}
	return c.accounts.List(ctx)
}
