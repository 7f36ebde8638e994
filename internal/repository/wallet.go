package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const walletColumns = `id, owner_id, name, wallet_type, balance, created_at`

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO wallets (owner_id, name, wallet_type, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		wallet.OwnerID, wallet.Name, wallet.Type, wallet.Balance,
	).Scan(&wallet.ID, &wallet.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id,
	)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return w, nil
}

func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1 ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOwner: scan: %w", err)
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByOwner: rows: %w", err)
	}
	return wallets, nil
}

// ApplyDelta adds delta to the stored balance in a single statement. The row
// stays locked by tx until it commits, so concurrent deltas serialize.
func (r *WalletRepository) ApplyDelta(ctx context.Context, tx *sql.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`UPDATE wallets SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		delta, id,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("ApplyDelta: %w", domain.ErrWalletNotFound)
		}
		if isPQCode(err, pgNumericOverflow) {
			return decimal.Zero, fmt.Errorf("ApplyDelta: wallet %d: %w", id, domain.ErrBalanceOutOfRange)
		}
		return decimal.Zero, fmt.Errorf("ApplyDelta: %w", err)
	}
	return balance, nil
}

func scanWallet(s scanner) (*domain.Wallet, error) {
	var w domain.Wallet
	err := s.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Type, &w.Balance, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
