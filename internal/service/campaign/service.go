package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

type campaignRepo interface {
	Create(ctx context.Context, tx *sql.Tx, c *domain.Campaign) error
	Update(ctx context.Context, tx *sql.Tx, c *domain.Campaign) error
	GetByID(ctx context.Context, id int64) (*domain.Campaign, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, id int64) error
	LockProducts(ctx context.Context, tx *sql.Tx, productIDs []int64) error
	FindActiveConflicts(ctx context.Context, tx *sql.Tx, productIDs []int64, now time.Time, excludeID int64) ([]domain.PromotionConflict, error)
	ReplaceProducts(ctx context.Context, tx *sql.Tx, campaignID int64, productIDs []int64) error
	ListActiveForProduct(ctx context.Context, productID int64, now time.Time) ([]domain.Campaign, error)
}

// Service owns campaign writes. A product may belong to at most one campaign
// whose end date has not passed.
type Service struct {
	campaigns campaignRepo
	db        *sql.DB
	now       func() time.Time
}

func NewService(campaigns campaignRepo, db *sql.DB) *Service {
	return &Service{
		campaigns: campaigns,
		db:        db,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CampaignRequest struct {
	Kind       domain.CampaignKind
	Name       string
	Code       *string
	StartDate  time.Time
	EndDate    time.Time
	ProductIDs []int64
}

func (s *Service) Create(ctx context.Context, req CampaignRequest) (*domain.Campaign, error) {
	log := logging.FromContext(ctx)

	req, err := validate(req)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	now := s.now()
	c := &domain.Campaign{
		Kind:       req.Kind,
		Name:       req.Name,
		Code:       req.Code,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		ProductIDs: req.ProductIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.save(ctx, c, false); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	log.Info("campaign created", "campaign_id", c.ID, "kind", c.Kind, "products", len(c.ProductIDs))
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, req CampaignRequest) (*domain.Campaign, error) {
	log := logging.FromContext(ctx)

	req, err := validate(req)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	existing, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	c := &domain.Campaign{
		ID:         id,
		Kind:       req.Kind,
		Name:       req.Name,
		Code:       req.Code,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		ProductIDs: req.ProductIDs,
		CreatedAt:  existing.CreatedAt,
		UpdatedAt:  s.now(),
	}

	if err := s.save(ctx, c, true); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	log.Info("campaign updated", "campaign_id", c.ID, "products", len(c.ProductIDs))
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return c, nil
}

func (s *Service) ListActiveForProduct(ctx context.Context, productID int64) ([]domain.Campaign, error) {
	now := s.now()
	campaigns, err := s.campaigns.ListActiveForProduct(ctx, productID, now)
	if err != nil {
		return nil, fmt.Errorf("ListActiveForProduct: %w", err)
	}
	return slices.DeleteFunc(campaigns, func(c domain.Campaign) bool { return !c.IsActive(now) }), nil
}

// save checks for conflicts and writes c in one transaction. Product locks are
// held until commit, so two requests claiming the same product serialize and
// the second sees the first's membership.
func (s *Service) save(ctx context.Context, c *domain.Campaign, existing bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback()

	if existing {
		if err := s.campaigns.LockForUpdate(ctx, tx, c.ID); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	if err := s.campaigns.LockProducts(ctx, tx, c.ProductIDs); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	conflicts, err := s.campaigns.FindActiveConflicts(ctx, tx, c.ProductIDs, s.now(), c.ID)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if len(conflicts) > 0 {
		return &domain.PromotionConflictError{Conflicts: conflicts}
	}

	if existing {
		err = s.campaigns.Update(ctx, tx, c)
	} else {
		err = s.campaigns.Create(ctx, tx, c)
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := s.campaigns.ReplaceProducts(ctx, tx, c.ID, c.ProductIDs); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}

// validate returns req normalized: name and code trimmed, a blank code
// dropped, product ids sorted and deduplicated.
func validate(req CampaignRequest) (CampaignRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = normalizeCode(req.Code)

	if req.Name == "" {
		return req, fmt.Errorf("validate: name is required: %w", domain.ErrInvalidRequest)
	}
	if !req.Kind.IsValid() {
		return req, fmt.Errorf("validate: kind %q: %w", req.Kind, domain.ErrInvalidRequest)
	}
	if req.Kind == domain.CampaignKindVoucher && req.Code == nil {
		return req, fmt.Errorf("validate: voucher requires a code: %w", domain.ErrInvalidRequest)
	}
	if !req.EndDate.After(req.StartDate) {
		return req, fmt.Errorf("validate: end date must be after start date: %w", domain.ErrInvalidRequest)
	}
	if len(req.ProductIDs) == 0 {
		return req, fmt.Errorf("validate: at least one product is required: %w", domain.ErrInvalidRequest)
	}

	ids := slices.Clone(req.ProductIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		if id <= 0 {
			return req, fmt.Errorf("validate: product id %d: %w", id, domain.ErrInvalidRequest)
		}
	}
	req.ProductIDs = ids
	return req, nil
}

// normalizeCode maps a blank code to nil; a stored code must be unique.
func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
