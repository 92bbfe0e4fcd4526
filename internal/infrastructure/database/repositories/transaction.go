package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/etebarfx/remit-bot/internal/domain/models"
	"github.com/etebarfx/remit-bot/internal/domain/repositories"
	apperrors "github.com/etebarfx/remit-bot/internal/errors"
	"github.com/etebarfx/remit-bot/pkg/log"
	"github.com/etebarfx/remit-bot/pkg/postgresql"
)

type TransactionRepositoryImpl struct {
	db     postgresql.Client
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db postgresql.Client) repositories.TransactionRepository {
	l := log.GetLogger()
	return &TransactionRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const insertTransaction = `
INSERT INTO transactions (customer_id, username, full_name, amount, fee, final_amount, local_amount, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx *models.Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, insertTransaction,
		tx.CustomerID,
		tx.Username,
		tx.FullName,
		tx.Amount,
		tx.Fee,
		tx.FinalAmount,
		tx.LocalAmount,
		string(tx.Status),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	return id, nil
}

const selectTransaction = `
SELECT id, customer_id, username, full_name, amount, fee, final_amount, local_amount, status,
       COALESCE(destination_text, ''), COALESCE(receipt_file_id, ''),
       COALESCE(recipient_name, ''), COALESCE(recipient_account, ''), COALESCE(recipient_bank_code, ''),
       created_at
FROM transactions`

func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, selectTransaction+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction", id)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return tx, nil
}

// UpdateStatus applies a conditional status transition. A zero-row update
// means the transaction either does not exist or already left the expected
// source status; the two cases are reported apart so the caller can show a
// deterministic notice.
func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, id int64, to models.TransactionStatus, from ...models.TransactionStatus) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE transactions SET status = $2 WHERE id = $1 AND status = ANY($3)",
		id, string(to), statusStrings(from),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

const attachDestination = `
UPDATE transactions SET destination_text = $2, status = $3
WHERE id = $1 AND status = $4`

func (r *TransactionRepositoryImpl) AttachDestination(ctx context.Context, id int64, destinationText string) error {
	tag, err := r.db.Exec(ctx, attachDestination,
		id, destinationText,
		string(models.StatusAwaitingReceipt),
		string(models.StatusAwaitingDestinationAccount),
	)
	if err != nil {
		return fmt.Errorf("attach destination: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *TransactionRepositoryImpl) SetReceipt(ctx context.Context, id int64, fileID string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE transactions SET receipt_file_id = $2 WHERE id = $1 AND status = $3",
		id, fileID, string(models.StatusAwaitingReceipt),
	)
	if err != nil {
		return fmt.Errorf("set receipt: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

const setRecipientInfo = `
UPDATE transactions
SET recipient_name = $2, recipient_account = $3, recipient_bank_code = $4, status = $5
WHERE id = $1 AND status = $6`

// SetRecipientInfo writes the beneficiary triple and the READY_TO_SETTLE
// transition in a single statement, so a partial triple can never be
// observed.
func (r *TransactionRepositoryImpl) SetRecipientInfo(ctx context.Context, id int64, info models.RecipientInfo) error {
	tag, err := r.db.Exec(ctx, setRecipientInfo,
		id, info.Name, info.Account, info.BankCode,
		string(models.StatusReadyToSettle),
		string(models.StatusAwaitingRecipientInfo),
	)
	if err != nil {
		return fmt.Errorf("set recipient info: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *TransactionRepositoryImpl) LatestByCustomerAndStatus(ctx context.Context, customerID int64, status models.TransactionStatus) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx,
		selectTransaction+" WHERE customer_id = $1 AND status = $2 ORDER BY id DESC LIMIT 1",
		customerID, string(status),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest transaction: %w", err)
	}

	return tx, nil
}

func (r *TransactionRepositoryImpl) ListByStatus(ctx context.Context, status models.TransactionStatus) ([]repositories.PendingTransactionRow, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, username, final_amount, local_amount FROM transactions WHERE status = $1 ORDER BY id DESC",
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	result := make([]repositories.PendingTransactionRow, 0)
	for rows.Next() {
		var row repositories.PendingTransactionRow
		if err := rows.Scan(&row.ID, &row.Username, &row.FinalAmount, &row.LocalAmount); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// staleOrMissing decides how to report a zero-row conditional update.
func (r *TransactionRepositoryImpl) staleOrMissing(ctx context.Context, id int64) error {
	var current string
	err := r.db.QueryRow(ctx, "SELECT status FROM transactions WHERE id = $1", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("transaction", id)
		}
		return fmt.Errorf("read status: %w", err)
	}

	r.logger.Warn().Int64("transaction_id", id).Str("status", current).Msg("conditional update lost the race")
	return apperrors.NewStaleTransitionError()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var status string
	err := row.Scan(
		&tx.ID, &tx.CustomerID, &tx.Username, &tx.FullName,
		&tx.Amount, &tx.Fee, &tx.FinalAmount, &tx.LocalAmount, &status,
		&tx.DestinationText, &tx.ReceiptFileID,
		&tx.Recipient.Name, &tx.Recipient.Account, &tx.Recipient.BankCode,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Status = models.TransactionStatus(status)
	return tx, nil
}

func statusStrings(statuses []models.TransactionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
