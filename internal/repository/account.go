package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// ListSubAccounts returns sub-accounts whose parent account type is in types.
// An empty types slice returns every sub-account.
func (r *AccountRepository) ListSubAccounts(ctx context.Context, types []domain.AccountType) ([]domain.SubAccount, error) {
	query := `SELECT s.id, s.account_id, a.account_type, s.name
		FROM sub_accounts s JOIN accounts a ON a.id = s.account_id`
	args := []any{}
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query += ` WHERE a.account_type = ANY($1)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY a.id, s.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListSubAccounts: %w", err)
	}
	defer rows.Close()

	var subs []domain.SubAccount
	for rows.Next() {
		var s domain.SubAccount
		if err := rows.Scan(&s.ID, &s.AccountID, &s.AccountType, &s.Name); err != nil {
			return nil, fmt.Errorf("ListSubAccounts: scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSubAccounts: rows: %w", err)
	}
	return subs, nil
}
