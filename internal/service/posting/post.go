package posting

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

func (s *Service) Post(ctx context.Context, req PostRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	rule, err := s.resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Post: %w", err)
	}

	t, err := s.executePost(ctx, req, rule)
	if err != nil {
		return nil, fmt.Errorf("Post: %w", err)
	}

	log.Info("transaction posted",
		"transaction_id", t.ID,
		"wallet_id", t.WalletID,
		"transaction_type_id", t.TransactionTypeID,
		"amount", t.Amount.StringFixed(domain.CurrencyPlaces),
		"entries", len(t.Entries),
	)
	return t, nil
}

func (s *Service) executePost(ctx context.Context, req PostRequest, rule ledger.Rule) (*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executePost: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	t := &domain.Transaction{
		WalletID:          req.WalletID,
		TransactionTypeID: req.TransactionTypeID,
		Amount:            req.Amount,
		Description:       req.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.transactions.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("executePost: create transaction: %w", err)
	}

	if rule.TouchesBalance() {
		if err := s.applyDelta(ctx, tx, t.WalletID, rule.Delta(t.Amount)); err != nil {
			return nil, fmt.Errorf("executePost: %w", err)
		}
	}

	if err := s.writeEntries(ctx, tx, t, rule); err != nil {
		return nil, fmt.Errorf("executePost: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executePost: commit: %w", err)
	}
	return t, nil
}

// applyDelta is a no-op for a zero delta so balance-neutral types never touch
// the wallet row.
func (s *Service) applyDelta(ctx context.Context, tx *sql.Tx, walletID int64, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	if _, err := s.wallets.ApplyDelta(ctx, tx, walletID, delta); err != nil {
		return fmt.Errorf("applyDelta: %w", err)
	}
	return nil
}
