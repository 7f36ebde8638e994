package service

import (
	"context"
	"fmt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type transactionTypeReader interface {
	GetByID(ctx context.Context, id int64) (*domain.TransactionType, error)
	List(ctx context.Context) ([]domain.TransactionType, error)
}

type subAccountLister interface {
	ListSubAccounts(ctx context.Context, types []domain.AccountType) ([]domain.SubAccount, error)
}

type TransactionTypeService struct {
	types    transactionTypeReader
	accounts subAccountLister
}

func NewTransactionTypeService(types transactionTypeReader, accounts subAccountLister) *TransactionTypeService {
	return &TransactionTypeService{types: types, accounts: accounts}
}

func (s *TransactionTypeService) List(ctx context.Context) ([]domain.TransactionType, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return types, nil
}

// ListSubAccounts returns the sub-accounts a user may pick for one side of a
// transaction of the given type.
func (s *TransactionTypeService) ListSubAccounts(ctx context.Context, typeID int64, side domain.EntryType) ([]domain.SubAccount, error) {
	if !side.IsValid() {
		return nil, fmt.Errorf("ListSubAccounts: side %q: %w", side, domain.ErrInvalidRequest)
	}

	tt, err := s.types.GetByID(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("ListSubAccounts: %w", err)
	}

	allowed := tt.AllowedAccountTypes(side)
	if len(allowed) == 0 {
		return []domain.SubAccount{}, nil
	}

	subs, err := s.accounts.ListSubAccounts(ctx, allowed)
	if err != nil {
		return nil, fmt.Errorf("ListSubAccounts: %w", err)
	}
	return subs, nil
}
