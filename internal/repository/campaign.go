package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const campaignColumns = `c.id, c.kind, c.name, c.code, c.start_date, c.end_date,
	c.created_at, c.updated_at,
	COALESCE(array_agg(cp.product_id ORDER BY cp.product_id)
		FILTER (WHERE cp.product_id IS NOT NULL), '{}')`

const campaignFrom = ` FROM campaigns c
	LEFT JOIN campaign_products cp ON cp.campaign_id = c.id`

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, tx *sql.Tx, c *domain.Campaign) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO campaigns (kind, name, code, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.Kind, c.Name, c.Code, c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", mapCampaignUnique(err))
	}
	return nil
}

func (r *CampaignRepository) Update(ctx context.Context, tx *sql.Tx, c *domain.Campaign) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE campaigns
		SET kind = $1, name = $2, code = $3, start_date = $4, end_date = $5, updated_at = $6
		WHERE id = $7`,
		c.Kind, c.Name, c.Code, c.StartDate, c.EndDate, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", mapCampaignUnique(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrCampaignNotFound)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+campaignFrom+` WHERE c.id = $1 GROUP BY c.id`, id,
	)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrCampaignNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// LockForUpdate locks the campaign row for the rest of tx.
func (r *CampaignRepository) LockForUpdate(ctx context.Context, tx *sql.Tx, id int64) error {
	var locked int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM campaigns WHERE id = $1 FOR UPDATE`, id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("LockForUpdate: %w", domain.ErrCampaignNotFound)
		}
		return fmt.Errorf("LockForUpdate: %w", err)
	}
	return nil
}

// productLockNamespace prefixes product ids before hashing them into
// advisory lock keys, keeping campaign locks apart from any other user of
// pg_advisory_xact_lock.
const productLockNamespace = "campaign_product:"

// LockProducts takes a transaction-scoped advisory lock per product id. Keys
// are locked in ascending key order so concurrent checks cannot deadlock.
func (r *CampaignRepository) LockProducts(ctx context.Context, tx *sql.Tx, productIDs []int64) error {
	keys, err := productLockKeys(ctx, tx, productIDs)
	if err != nil {
		return fmt.Errorf("LockProducts: %w", err)
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, k); err != nil {
			return fmt.Errorf("LockProducts key %d: %w", k, err)
		}
	}
	return nil
}

func productLockKeys(ctx context.Context, tx *sql.Tx, productIDs []int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT hashtextextended($1 || id::text, 0) AS k
		FROM unnest($2::bigint[]) AS id
		ORDER BY k`,
		productLockNamespace, pq.Array(productIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("productLockKeys: %w", err)
	}
	defer rows.Close()

	var keys []int64
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("productLockKeys: scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("productLockKeys: %w", err)
	}
	return keys, nil
}

// FindActiveConflicts returns the products in productIDs already held by a
// campaign other than excludeID whose end date is after now.
func (r *CampaignRepository) FindActiveConflicts(ctx context.Context, tx *sql.Tx, productIDs []int64, now time.Time, excludeID int64) ([]domain.PromotionConflict, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT cp.product_id, c.name
		FROM campaign_products cp
		JOIN campaigns c ON c.id = cp.campaign_id
		WHERE cp.product_id = ANY($1) AND c.end_date > $2 AND c.id <> $3
		ORDER BY cp.product_id, c.name`,
		pq.Array(productIDs), now, excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("FindActiveConflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []domain.PromotionConflict
	for rows.Next() {
		var c domain.PromotionConflict
		if err := rows.Scan(&c.ProductID, &c.EventName); err != nil {
			return nil, fmt.Errorf("FindActiveConflicts: scan: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindActiveConflicts: rows: %w", err)
	}
	return conflicts, nil
}

// ReplaceProducts makes productIDs the exact membership of the campaign.
func (r *CampaignRepository) ReplaceProducts(ctx context.Context, tx *sql.Tx, campaignID int64, productIDs []int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM campaign_products WHERE campaign_id = $1`, campaignID,
	); err != nil {
		return fmt.Errorf("ReplaceProducts: delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO campaign_products (campaign_id, product_id)
		SELECT $1, unnest($2::bigint[])`,
		campaignID, pq.Array(productIDs),
	); err != nil {
		return fmt.Errorf("ReplaceProducts: insert: %w", err)
	}
	return nil
}

func (r *CampaignRepository) ListActiveForProduct(ctx context.Context, productID int64, now time.Time) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+campaignColumns+campaignFrom+`
		WHERE c.end_date > $2
			AND c.id IN (SELECT campaign_id FROM campaign_products WHERE product_id = $1)
		GROUP BY c.id
		ORDER BY c.start_date, c.id`,
		productID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ListActiveForProduct: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActiveForProduct: scan: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActiveForProduct: rows: %w", err)
	}
	return campaigns, nil
}

func mapCampaignUnique(err error) error {
	if constraint, ok := pqConstraint(err, pgUniqueViolation); ok && constraint == "campaigns_code_key" {
		return domain.ErrDuplicateVoucherCode
	}
	return err
}

func scanCampaign(s scanner) (*domain.Campaign, error) {
	var (
		c        domain.Campaign
		code     sql.NullString
		products pq.Int64Array
	)
	err := s.Scan(
		&c.ID, &c.Kind, &c.Name, &code, &c.StartDate, &c.EndDate,
		&c.CreatedAt, &c.UpdatedAt, &products,
	)
	if err != nil {
		return nil, err
	}
	if code.Valid {
		c.Code = &code.String
	}
	c.ProductIDs = []int64(products)
	return &c, nil
}
