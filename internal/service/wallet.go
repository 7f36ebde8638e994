package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

type walletRepo interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Wallet, error)
}

type WalletService struct {
	wallets walletRepo
}

func NewWalletService(wallets walletRepo) *WalletService {
	return &WalletService{wallets: wallets}
}

type CreateWalletRequest struct {
	OwnerID        int64
	Name           string
	Type           domain.WalletType
	OpeningBalance decimal.Decimal
}

func (s *WalletService) CreateWallet(ctx context.Context, req CreateWalletRequest) (*domain.Wallet, error) {
	log := logging.FromContext(ctx)

	if req.OwnerID <= 0 || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("CreateWallet: %w", domain.ErrInvalidRequest)
	}
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("CreateWallet: %w", domain.ErrInvalidWalletType)
	}
	if err := domain.ValidateOpeningBalance(req.OpeningBalance); err != nil {
		return nil, fmt.Errorf("CreateWallet: %w", err)
	}

	wallet := &domain.Wallet{
		OwnerID: req.OwnerID,
		Name:    strings.TrimSpace(req.Name),
		Type:    req.Type,
		Balance: req.OpeningBalance,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("CreateWallet: %w", err)
	}

	log.Info("wallet created",
		"wallet_id", wallet.ID,
		"owner_id", wallet.OwnerID,
		"wallet_type", wallet.Type,
	)
	return wallet, nil
}

func (s *WalletService) GetWallet(ctx context.Context, id int64) (*domain.Wallet, error) {
	w, err := s.wallets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetWallet: %w", err)
	}
	return w, nil
}

func (s *WalletService) ListWallets(ctx context.Context, ownerID int64) ([]domain.Wallet, error) {
	wallets, err := s.wallets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListWallets: %w", err)
	}
	return wallets, nil
}
