package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const transactionTypeColumns = `id, name, debit_account_types, credit_account_types`

type TransactionTypeRepository struct {
	db *sql.DB
}

func NewTransactionTypeRepository(db *sql.DB) *TransactionTypeRepository {
	return &TransactionTypeRepository{db: db}
}

func (r *TransactionTypeRepository) GetByID(ctx context.Context, id int64) (*domain.TransactionType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionTypeColumns+` FROM transaction_types WHERE id = $1`, id,
	)
	t, err := scanTransactionType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrTransactionTypeNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

func (r *TransactionTypeRepository) GetByName(ctx context.Context, name string) (*domain.TransactionType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionTypeColumns+` FROM transaction_types WHERE name = $1`, name,
	)
	t, err := scanTransactionType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByName: %w", domain.ErrTransactionTypeNotFound)
		}
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return t, nil
}

func (r *TransactionTypeRepository) List(ctx context.Context) ([]domain.TransactionType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionTypeColumns+` FROM transaction_types ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var types []domain.TransactionType
	for rows.Next() {
		t, err := scanTransactionType(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		types = append(types, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return types, nil
}

func scanTransactionType(s scanner) (*domain.TransactionType, error) {
	var t domain.TransactionType
	var debitTypes, creditTypes pq.StringArray
	if err := s.Scan(&t.ID, &t.Name, &debitTypes, &creditTypes); err != nil {
		return nil, err
	}
	t.DebitAccountTypes = toAccountTypes(debitTypes)
	t.CreditAccountTypes = toAccountTypes(creditTypes)
	return &t, nil
}

func toAccountTypes(values []string) []domain.AccountType {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.AccountType, len(values))
	for i, v := range values {
		out[i] = domain.AccountType(v)
	}
	return out
}
