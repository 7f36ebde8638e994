package posting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

type walletRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)
	ApplyDelta(ctx context.Context, tx *sql.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error)
}

type transactionTypeRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.TransactionType, error)
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Transaction, error)
	Update(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int, error)
}

type entryRepo interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.AccountingEntry) error
	GetByTransactionID(ctx context.Context, transactionID int64) ([]domain.AccountingEntry, error)
	DeleteByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) (int64, error)
}

// Service posts transactions against wallets. Every mutation runs in a single
// storage transaction: the header, the wallet delta and the accounting entries
// commit or roll back together.
type Service struct {
	wallets      walletRepo
	types        transactionTypeRepo
	transactions transactionRepo
	entries      entryRepo
	db           *sql.DB
	now          func() time.Time
}

func NewService(
	wallets walletRepo,
	types transactionTypeRepo,
	transactions transactionRepo,
	entries entryRepo,
	db *sql.DB,
) *Service {
	return &Service{
		wallets:      wallets,
		types:        types,
		transactions: transactions,
		entries:      entries,
		db:           db,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PostRequest is the caller's description of a transaction. Update reuses it
// as the replacement values.
type PostRequest struct {
	WalletID          int64
	TransactionTypeID int64
	Amount            decimal.Decimal
	Description       string
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	entries, err := s.entries.GetByTransactionID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	t.Entries = entries
	return t, nil
}

func (s *Service) ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int, error) {
	if _, err := s.wallets.GetByID(ctx, walletID); err != nil {
		return nil, 0, fmt.Errorf("ListByWallet: %w", err)
	}

	txns, total, err := s.transactions.ListByWallet(ctx, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByWallet: %w", err)
	}
	return txns, total, nil
}

func (s *Service) resolveRule(ctx context.Context, typeID int64) (ledger.Rule, error) {
	tt, err := s.types.GetByID(ctx, typeID)
	if err != nil {
		return ledger.Rule{}, fmt.Errorf("resolveRule: %w", err)
	}
	rule, err := ledger.RuleForName(tt.Name)
	if err != nil {
		return ledger.Rule{}, fmt.Errorf("resolveRule: %w", err)
	}
	return rule, nil
}

// resolve validates req and returns the posting rule for its type. The wallet
// is looked up so a missing one fails before any storage transaction opens.
func (s *Service) resolve(ctx context.Context, req PostRequest) (ledger.Rule, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return ledger.Rule{}, fmt.Errorf("resolve: %w", err)
	}

	rule, err := s.resolveRule(ctx, req.TransactionTypeID)
	if err != nil {
		return ledger.Rule{}, fmt.Errorf("resolve: %w", err)
	}

	if _, err := s.wallets.GetByID(ctx, req.WalletID); err != nil {
		return ledger.Rule{}, fmt.Errorf("resolve: %w", err)
	}
	return rule, nil
}

// writeEntries inserts the accounting entries rule produces for t.
func (s *Service) writeEntries(ctx context.Context, tx *sql.Tx, t *domain.Transaction, rule ledger.Rule) error {
	effects := rule.Effects(t.Amount)
	t.Entries = make([]domain.AccountingEntry, 0, len(effects.Entries))
	for _, e := range effects.Entries {
		entry := domain.AccountingEntry{
			TransactionID: t.ID,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
			Description:   t.Description,
			EntryDate:     t.UpdatedAt,
		}
		if err := s.entries.Create(ctx, tx, &entry); err != nil {
			return fmt.Errorf("writeEntries: %w", err)
		}
		t.Entries = append(t.Entries, entry)
	}
	return nil
}
