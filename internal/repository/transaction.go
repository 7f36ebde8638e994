package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const transactionColumns = `id, wallet_id, transaction_type_id, amount, description,
	created_at, updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO transactions (wallet_id, transaction_type_id, amount, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		t.WalletID, t.TransactionTypeID, t.Amount, t.Description, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", mapTransactionFK(err))
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		SET wallet_id = $1, transaction_type_id = $2, amount = $3, description = $4, updated_at = $5
		WHERE id = $6`,
		t.WalletID, t.TransactionTypeID, t.Amount, t.Description, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", mapTransactionFK(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrTransactionNotFound)
	}
	return nil
}

// Delete removes the transaction together with the accounting entries it owns.
func (r *TransactionRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM accounting_entries WHERE transaction_id = $1`, id,
	); err != nil {
		return fmt.Errorf("Delete: entries: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrTransactionNotFound)
	}
	return nil
}

func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByWallet: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE wallet_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		walletID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByWallet: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListByWallet: scan: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListByWallet: rows: %w", err)
	}
	return transactions, total, nil
}

func mapTransactionFK(err error) error {
	constraint, ok := pqConstraint(err, pgForeignKeyViolation)
	if !ok {
		return err
	}
	switch constraint {
	case "transactions_wallet_id_fkey":
		return domain.ErrWalletNotFound
	case "transactions_transaction_type_id_fkey":
		return domain.ErrTransactionTypeNotFound
	}
	return err
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.WalletID, &t.TransactionTypeID, &t.Amount, &t.Description,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
