package posting

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

// Update replaces a posted transaction. The prior wallet effect is reversed and
// its entries removed before the new values are applied, all in one storage
// transaction.
func (s *Service) Update(ctx context.Context, id int64, req PostRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	rule, err := s.resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	t, err := s.executeUpdate(ctx, id, req, rule)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	log.Info("transaction updated",
		"transaction_id", t.ID,
		"wallet_id", t.WalletID,
		"transaction_type_id", t.TransactionTypeID,
		"amount", t.Amount.StringFixed(domain.CurrencyPlaces),
	)
	return t, nil
}

func (s *Service) executeUpdate(ctx context.Context, id int64, req PostRequest, rule ledger.Rule) (*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeUpdate: begin tx: %w", err)
	}
	defer tx.Rollback()

	prior, err := s.transactions.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("executeUpdate: %w", err)
	}

	priorRule, err := s.resolveRule(ctx, prior.TransactionTypeID)
	if err != nil {
		return nil, fmt.Errorf("executeUpdate: prior: %w", err)
	}

	deltas := map[int64]decimal.Decimal{}
	addDelta(deltas, prior.WalletID, priorRule.Inverse().Delta(prior.Amount))
	addDelta(deltas, req.WalletID, rule.Delta(req.Amount))
	if err := s.applyDeltasInOrder(ctx, tx, deltas); err != nil {
		return nil, fmt.Errorf("executeUpdate: %w", err)
	}

	if _, err := s.entries.DeleteByTransactionID(ctx, tx, id); err != nil {
		return nil, fmt.Errorf("executeUpdate: %w", err)
	}

	t := &domain.Transaction{
		ID:                id,
		WalletID:          req.WalletID,
		TransactionTypeID: req.TransactionTypeID,
		Amount:            req.Amount,
		Description:       req.Description,
		CreatedAt:         prior.CreatedAt,
		UpdatedAt:         s.now(),
	}
	if err := s.transactions.Update(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("executeUpdate: %w", err)
	}

	if err := s.writeEntries(ctx, tx, t, rule); err != nil {
		return nil, fmt.Errorf("executeUpdate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeUpdate: commit: %w", err)
	}
	return t, nil
}

// Delete removes a transaction, restoring the wallet balance it changed and
// dropping its accounting entries.
func (s *Service) Delete(ctx context.Context, id int64) error {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Delete: begin tx: %w", err)
	}
	defer tx.Rollback()

	prior, err := s.transactions.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	priorRule, err := s.resolveRule(ctx, prior.TransactionTypeID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	if err := s.applyDelta(ctx, tx, prior.WalletID, priorRule.Inverse().Delta(prior.Amount)); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	if err := s.transactions.Delete(ctx, tx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Delete: commit: %w", err)
	}

	log.Info("transaction deleted", "transaction_id", id, "wallet_id", prior.WalletID)
	return nil
}

func addDelta(deltas map[int64]decimal.Decimal, walletID int64, d decimal.Decimal) {
	deltas[walletID] = deltas[walletID].Add(d)
}

// applyDeltasInOrder updates wallets in ascending id order so two corrections
// moving between the same pair of wallets cannot deadlock.
func (s *Service) applyDeltasInOrder(ctx context.Context, tx *sql.Tx, deltas map[int64]decimal.Decimal) error {
	ids := make([]int64, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := s.applyDelta(ctx, tx, id, deltas[id]); err != nil {
			return fmt.Errorf("applyDeltasInOrder: wallet %d: %w", id, err)
		}
	}
	return nil
}
