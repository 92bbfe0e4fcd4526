package repositories

import (
	"context"

	"github.com/etebarfx/remit-bot/internal/domain/models"
)

// AccountRepository is the append-only catalogue of receiving accounts.
type AccountRepository interface {
	Insert(ctx context.Context, acc *models.ReceivingAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ReceivingAccount, error)
	List(ctx context.Context) ([]models.ReceivingAccount, error)
}
