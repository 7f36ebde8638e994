package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const accountingEntryColumns = `id, transaction_id, entry_type, amount, description, entry_date`

type AccountingEntryRepository struct {
	db *sql.DB
}

func NewAccountingEntryRepository(db *sql.DB) *AccountingEntryRepository {
	return &AccountingEntryRepository{db: db}
}

func (r *AccountingEntryRepository) Create(ctx context.Context, tx *sql.Tx, entry *domain.AccountingEntry) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO accounting_entries (transaction_id, entry_type, amount, description, entry_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		entry.TransactionID, entry.EntryType, entry.Amount, entry.Description, entry.EntryDate,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountingEntryRepository) GetByTransactionID(ctx context.Context, transactionID int64) ([]domain.AccountingEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountingEntryColumns+` FROM accounting_entries
		WHERE transaction_id = $1 ORDER BY id`, transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByTransactionID: %w", err)
	}
	defer rows.Close()

	var entries []domain.AccountingEntry
	for rows.Next() {
		e, err := scanAccountingEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByTransactionID: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByTransactionID: rows: %w", err)
	}
	return entries, nil
}

func (r *AccountingEntryRepository) DeleteByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM accounting_entries WHERE transaction_id = $1`, transactionID,
	)
	if err != nil {
		return 0, fmt.Errorf("DeleteByTransactionID: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteByTransactionID: rows affected: %w", err)
	}
	return n, nil
}

func scanAccountingEntry(s scanner) (*domain.AccountingEntry, error) {
	var e domain.AccountingEntry
	err := s.Scan(&e.ID, &e.TransactionID, &e.EntryType, &e.Amount, &e.Description, &e.EntryDate)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
