package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/domain/repositories"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
	"github.com/etebarfx/remit-bot/pkg/postgresql"
)

type AccountRepositoryImpl struct {
	db postgresql.Client
}

func NewAccountRepositoryImpl(db postgresql.Client) repositories.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

func (r *AccountRepositoryImpl) Insert(ctx context.Context, acc *models.ReceivingAccount) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO receiving_accounts (bank, sort_code, account_number, holder_name) VALUES ($1, $2, $3, $4) RETURNING id",
		acc.Bank, acc.SortCode, acc.AccountNumber, acc.HolderName,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert receiving account: %w", err)
	}

	return id, nil
}

func (r *AccountRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.ReceivingAccount, error) {
	acc := &models.ReceivingAccount{}
	err := r.db.QueryRow(ctx,
		"SELECT id, bank, sort_code, account_number, holder_name, created_at FROM receiving_accounts WHERE id = $1",
		id,
	).Scan(&acc.ID, &acc.Bank, &acc.SortCode, &acc.AccountNumber, &acc.HolderName, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("receiving account", id)
		}
		return nil, fmt.Errorf("get receiving account: %w", err)
	}

	return acc, nil
}

func (r *AccountRepositoryImpl) List(ctx context.Context) ([]models.ReceivingAccount, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, bank, sort_code, account_number, holder_name, created_at FROM receiving_accounts ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("list receiving accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.ReceivingAccount, 0)
	for rows.Next() {
		var acc models.ReceivingAccount
		if err := rows.Scan(&acc.ID, &acc.Bank, &acc.SortCode, &acc.AccountNumber, &acc.HolderName, &acc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receiving account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list receiving accounts: %w", err)
	}
	return accounts, nil
}
