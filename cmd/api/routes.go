package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"

	"github.com/josh-kwaku/shop-ledger/internal/cache"
	"github.com/josh-kwaku/shop-ledger/internal/config"
	"github.com/josh-kwaku/shop-ledger/internal/handler"
	"github.com/josh-kwaku/shop-ledger/internal/middleware"
	"github.com/josh-kwaku/shop-ledger/internal/repository"
	"github.com/josh-kwaku/shop-ledger/internal/service"
	"github.com/josh-kwaku/shop-ledger/internal/service/campaign"
	"github.com/josh-kwaku/shop-ledger/internal/service/posting"
)

func newRouter(
	cfg *config.Config,
	db *sql.DB,
	rdb *redis.Client,
	idempotency *repository.IdempotencyRepository,
	logger *slog.Logger,
) http.Handler {
	walletRepo := repository.NewWalletRepository(db)
	txTypes := cache.NewTransactionTypes(repository.NewTransactionTypeRepository(db), rdb, cfg.TxTypeCacheTTL)

	poster := posting.NewService(
		walletRepo,
		txTypes,
		repository.NewTransactionRepository(db),
		repository.NewAccountingEntryRepository(db),
		db,
	)
	campaigns := campaign.NewService(repository.NewCampaignRepository(db), db)

	wallets := handler.NewWalletHandler(service.NewWalletService(walletRepo))
	transactions := handler.NewTransactionHandler(poster)
	types := handler.NewTransactionTypeHandler(service.NewTransactionTypeService(txTypes, repository.NewAccountRepository(db)))
	promos := handler.NewCampaignHandler(campaigns)
	shipping := handler.NewShippingHandler()
	health := handler.NewHealthHandler(db, redisPing(rdb))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", health.Liveness)
	mux.HandleFunc("GET /health/ready", health.Readiness)

	mux.HandleFunc("POST /api/v1/wallets", wallets.Create)
	mux.HandleFunc("GET /api/v1/wallets/{id}", wallets.Get)
	mux.HandleFunc("GET /api/v1/owners/{id}/wallets", wallets.ListByOwner)
	mux.HandleFunc("GET /api/v1/wallets/{id}/transactions", transactions.ListByWallet)

	mux.HandleFunc("POST /api/v1/transactions", transactions.Create)
	mux.HandleFunc("GET /api/v1/transactions/{id}", transactions.Get)
	mux.HandleFunc("PUT /api/v1/transactions/{id}", transactions.Update)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", transactions.Delete)

	mux.HandleFunc("GET /api/v1/transaction-types", types.List)
	mux.HandleFunc("GET /api/v1/transaction-types/{id}/sub-accounts", types.SubAccounts)

	mux.HandleFunc("POST /api/v1/campaigns", promos.Create)
	mux.HandleFunc("PUT /api/v1/campaigns/{id}", promos.Update)
	mux.HandleFunc("GET /api/v1/campaigns/{id}", promos.Get)
	mux.HandleFunc("GET /api/v1/products/{id}/campaigns", promos.ListActiveForProduct)

	mux.HandleFunc("POST /api/v1/shipping/quotes/filter", shipping.Filter)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery,
		middleware.Idempotency(idempotency, cfg.IdempotencyTTL),
	)
}
