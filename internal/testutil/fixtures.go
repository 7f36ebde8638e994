package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

func SeedWallet(t *testing.T, db *sql.DB, ownerID int64, balance string) *domain.Wallet {
	t.Helper()

	w := &domain.Wallet{
		OwnerID: ownerID,
		Name:    "Till",
		Type:    domain.WalletTypeCash,
		Balance: decimal.RequireFromString(balance),
	}
	err := db.QueryRow(
		`INSERT INTO wallets (owner_id, name, wallet_type, balance)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		w.OwnerID, w.Name, w.Type, w.Balance,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		t.Fatalf("seed wallet for owner %d: %v", ownerID, err)
	}
	return w
}

// TransactionTypeID looks up a seeded transaction type by name.
func TransactionTypeID(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	var id int64
	if err := db.QueryRow(`SELECT id FROM transaction_types WHERE name = $1`, name).Scan(&id); err != nil {
		t.Fatalf("transaction type %s: %v", name, err)
	}
	return id
}

// SeedCampaign inserts a campaign running from start to end with the given
// products, bypassing the conflict check.
func SeedCampaign(t *testing.T, db *sql.DB, name string, start, end time.Time, productIDs ...int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO campaigns (kind, name, start_date, end_date)
		 VALUES ('event_discount', $1, $2, $3)
		 RETURNING id`,
		name, start, end,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed campaign %s: %v", name, err)
	}

	_, err = db.Exec(
		`INSERT INTO campaign_products (campaign_id, product_id) SELECT $1, unnest($2::bigint[])`,
		id, pq.Array(productIDs),
	)
	if err != nil {
		t.Fatalf("seed campaign %s products: %v", name, err)
	}
	return id
}

func GetWalletBalance(t *testing.T, db *sql.DB, walletID int64) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance)
	if err != nil {
		t.Fatalf("get wallet balance %d: %v", walletID, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, walletID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for wallet %d: %v", walletID, err)
	}
	return count
}

func CountAccountingEntries(t *testing.T, db *sql.DB, transactionID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM accounting_entries WHERE transaction_id = $1`, transactionID).Scan(&count)
	if err != nil {
		t.Fatalf("count accounting entries for transaction %d: %v", transactionID, err)
	}
	return count
}

func CountCampaigns(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM campaigns`).Scan(&count); err != nil {
		t.Fatalf("count campaigns: %v", err)
	}
	return count
}
