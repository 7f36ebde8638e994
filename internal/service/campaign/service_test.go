package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type fakeCampaigns struct {
	rows   map[int64]domain.Campaign
	locked []int64
	nextID int64
}

func (f *fakeCampaigns) Create(_ context.Context, _ *sql.Tx, c *domain.Campaign) error {
	if c.Code != nil {
		for _, other := range f.rows {
			if other.Code != nil && *other.Code == *c.Code {
				return domain.ErrDuplicateVoucherCode
			}
		}
	}
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCampaigns) Update(_ context.Context, _ *sql.Tx, c *domain.Campaign) error {
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCampaigns) GetByID(_ context.Context, id int64) (*domain.Campaign, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &c, nil
}

func (f *fakeCampaigns) LockForUpdate(_ context.Context, _ *sql.Tx, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (f *fakeCampaigns) LockProducts(_ context.Context, _ *sql.Tx, ids []int64) error {
	f.locked = append(f.locked, ids...)
	return nil
}

func (f *fakeCampaigns) FindActiveConflicts(_ context.Context, _ *sql.Tx, ids []int64, now time.Time, excludeID int64) ([]domain.PromotionConflict, error) {
	var out []domain.PromotionConflict
	for _, id := range ids {
		for _, c := range f.rows {
			if c.ID != excludeID && c.EndDate.After(now) && slices.Contains(c.ProductIDs, id) {
				out = append(out, domain.PromotionConflict{ProductID: id, EventName: c.Name})
			}
		}
	}
	return out, nil
}

func (f *fakeCampaigns) ReplaceProducts(_ context.Context, _ *sql.Tx, id int64, ids []int64) error {
	c := f.rows[id]
	c.ProductIDs = ids
	f.rows[id] = c
	return nil
}

func (f *fakeCampaigns) ListActiveForProduct(_ context.Context, productID int64, now time.Time) ([]domain.Campaign, error) {
	var out []domain.Campaign
	for _, c := range f.rows {
		if c.EndDate.After(now) && slices.Contains(c.ProductIDs, productID) {
			out = append(out, c)
		}
	}
	return out, nil
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeCampaigns) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeCampaigns{rows: map[int64]domain.Campaign{}}
	svc := NewService(repo, db)
	svc.now = func() time.Time { return now }
	return svc, mock, repo
}

func sale(name string, products ...int64) CampaignRequest {
	return CampaignRequest{
		Kind:       domain.CampaignKindEventDiscount,
		Name:       name,
		StartDate:  now.Add(-24 * time.Hour),
		EndDate:    now.Add(30 * 24 * time.Hour),
		ProductIDs: products,
	}
}

func TestCreate_ConflictPersistsNothing(t *testing.T) {
	svc, mock, repo := newTestService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Create(ctx, sale("Ramadan Sale", 5, 11))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Create(ctx, sale("Flash Friday", 7, 5))
	require.ErrorIs(t, err, domain.ErrPromotionConflict)

	var conflictErr *domain.PromotionConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, []domain.PromotionConflict{{ProductID: 5, EventName: "Ramadan Sale"}}, conflictErr.Conflicts)

	assert.Len(t, repo.rows, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_LocksSortedDistinctProducts(t *testing.T) {
	svc, mock, repo := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectCommit()
	c, err := svc.Create(context.Background(), sale("Clearance", 9, 3, 9, 4))
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4, 9}, repo.locked)
	assert.Equal(t, []int64{3, 4, 9}, c.ProductIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExpiredCampaignDoesNotConflict(t *testing.T) {
	svc, mock, repo := newTestService(t)
	repo.rows[1] = domain.Campaign{ID: 1, Name: "Last Year", EndDate: now.Add(-time.Hour), ProductIDs: []int64{5}}
	repo.nextID = 1

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Create(context.Background(), sale("New Year", 5))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_IgnoresOwnProducts(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	created, err := svc.Create(ctx, sale("Ramadan Sale", 5))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	updated, err := svc.Update(ctx, created.ID, sale("Ramadan Sale Extended", 5, 6))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, updated.ProductIDs)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	svc, mock, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 404, sale("Ghost", 1))
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate(t *testing.T) {
	code := "EID10"
	blank := " "

	tests := []struct {
		name    string
		mutate  func(*CampaignRequest)
		wantErr bool
	}{
		{"valid", func(*CampaignRequest) {}, false},
		{"blank name", func(r *CampaignRequest) { r.Name = "  " }, true},
		{"bad kind", func(r *CampaignRequest) { r.Kind = "bogo" }, true},
		{"end equals start", func(r *CampaignRequest) { r.EndDate = r.StartDate }, true},
		{"end before start", func(r *CampaignRequest) { r.EndDate = r.StartDate.Add(-time.Hour) }, true},
		{"no products", func(r *CampaignRequest) { r.ProductIDs = nil }, true},
		{"non-positive product", func(r *CampaignRequest) { r.ProductIDs = []int64{0} }, true},
		{"voucher without code", func(r *CampaignRequest) { r.Kind = domain.CampaignKindVoucher }, true},
		{"voucher with blank code", func(r *CampaignRequest) { r.Kind = domain.CampaignKindVoucher; r.Code = &blank }, true},
		{"voucher with code", func(r *CampaignRequest) { r.Kind = domain.CampaignKindVoucher; r.Code = &code }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := sale("Promo", 1, 2)
			tc.mutate(&req)
			_, err := validate(req)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetAndListActiveForProduct(t *testing.T) {
	svc, mock, repo := newTestService(t)
	ctx := context.Background()

	repo.rows[1] = domain.Campaign{ID: 1, Name: "Last Season", EndDate: now.Add(-time.Hour), ProductIDs: []int64{5}}
	repo.nextID = 1

	mock.ExpectBegin()
	mock.ExpectCommit()
	created, err := svc.Create(ctx, sale("Ramadan Sale", 5, 7))
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ramadan Sale", got.Name)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)

	active, err := svc.ListActiveForProduct(ctx, 5)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BlankCodeStoredAsNil(t *testing.T) {
	svc, mock, repo := newTestService(t)
	ctx := context.Background()

	for i, code := range []string{"", "   "} {
		req := sale(fmt.Sprintf("Event %d", i), int64(i+1))
		req.Code = &code

		mock.ExpectBegin()
		mock.ExpectCommit()
		c, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Nil(t, c.Code)
	}
	assert.Len(t, repo.rows, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_VoucherCodeTrimmed(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	padded, plain := "SALE ", "SALE"

	first := sale("Eid", 1)
	first.Kind = domain.CampaignKindVoucher
	first.Code = &padded

	mock.ExpectBegin()
	mock.ExpectCommit()
	c, err := svc.Create(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, c.Code)
	assert.Equal(t, "SALE", *c.Code)

	second := sale("Eid again", 2)
	second.Kind = domain.CampaignKindVoucher
	second.Code = &plain

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Create(ctx, second)
	assert.ErrorIs(t, err, domain.ErrDuplicateVoucherCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveForProduct_DropsEnded(t *testing.T) {
	svc, _, repo := newTestService(t)
	repo.rows[1] = domain.Campaign{ID: 1, Name: "Ended", EndDate: now, ProductIDs: []int64{5}}
	repo.rows[2] = domain.Campaign{ID: 2, Name: "Running", EndDate: now.Add(time.Hour), ProductIDs: []int64{5}}

	active, err := svc.ListActiveForProduct(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Running", active[0].Name)
}
