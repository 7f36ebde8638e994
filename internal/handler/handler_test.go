package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/service"
	"github.com/josh-kwaku/shop-ledger/internal/service/campaign"
	"github.com/josh-kwaku/shop-ledger/internal/service/posting"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, pattern string, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

type stubPoster struct {
	got posting.PostRequest
	err error
}

func (s *stubPoster) Post(_ context.Context, req posting.PostRequest) (*domain.Transaction, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Transaction{
		ID: 10, WalletID: req.WalletID, TransactionTypeID: req.TransactionTypeID,
		Amount: req.Amount, Description: req.Description,
		Entries: []domain.AccountingEntry{{ID: 1, TransactionID: 10, EntryType: domain.EntryTypeDebit, Amount: req.Amount}},
	}, nil
}

func (s *stubPoster) Update(ctx context.Context, _ int64, req posting.PostRequest) (*domain.Transaction, error) {
	return s.Post(ctx, req)
}

func (s *stubPoster) Delete(context.Context, int64) error { return s.err }

func (s *stubPoster) Get(context.Context, int64) (*domain.Transaction, error) {
	return nil, fmt.Errorf("Get: %w", domain.ErrTransactionNotFound)
}

func (s *stubPoster) ListByWallet(_ context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int, error) {
	return []domain.Transaction{{ID: 1, WalletID: walletID}}, 41, nil
}

func TestTransactionHandler_Create(t *testing.T) {
	poster := &stubPoster{}
	h := NewTransactionHandler(poster)

	rec, env := serve(t, "POST /api/v1/transactions", h.Create, http.MethodPost, "/api/v1/transactions",
		`{"wallet_id":1,"transaction_type_id":4,"amount":"40.00","description":"invoice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "40", poster.got.Amount.String())

	var dto transactionDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "40.00", dto.Amount)
	require.Len(t, dto.Entries, 1)
	assert.Equal(t, "DEBIT", dto.Entries[0].EntryType)
}

func TestTransactionHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"wallet_id":`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown field", `{"wallet_id":1,"transaction_type_id":1,"amount":"1","balance":"9"}`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing wallet id", `{"transaction_type_id":1,"amount":"1"}`, nil, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"invalid amount", `{"wallet_id":1,"transaction_type_id":1,"amount":"0"}`, domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"wallet not found", `{"wallet_id":9,"transaction_type_id":1,"amount":"1"}`, domain.ErrWalletNotFound, http.StatusNotFound, "WALLET_NOT_FOUND"},
		{"unknown type", `{"wallet_id":1,"transaction_type_id":1,"amount":"1"}`, domain.ErrUnknownTransactionType, http.StatusUnprocessableEntity, "UNKNOWN_TRANSACTION_TYPE"},
		{"balance overflow", `{"wallet_id":1,"transaction_type_id":1,"amount":"1"}`, domain.ErrBalanceOutOfRange, http.StatusUnprocessableEntity, "BALANCE_OUT_OF_RANGE"},
		{"storage failure", `{"wallet_id":1,"transaction_type_id":1,"amount":"1"}`, errors.New("conn reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			poster := &stubPoster{}
			if tc.serviceErr != nil {
				poster.err = fmt.Errorf("Post: %w", tc.serviceErr)
			}
			h := NewTransactionHandler(poster)

			rec, env := serve(t, "POST /api/v1/transactions", h.Create, http.MethodPost, "/api/v1/transactions", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
		})
	}
}

func TestTransactionHandler_GetNotFound(t *testing.T) {
	h := NewTransactionHandler(&stubPoster{})

	rec, env := serve(t, "GET /api/v1/transactions/{id}", h.Get, http.MethodGet, "/api/v1/transactions/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TRANSACTION_NOT_FOUND", env.Error.Code)

	rec, _ = serve(t, "GET /api/v1/transactions/{id}", h.Get, http.MethodGet, "/api/v1/transactions/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionHandler_ListPaging(t *testing.T) {
	h := NewTransactionHandler(&stubPoster{})

	rec, env := serve(t, "GET /api/v1/wallets/{id}/transactions", h.ListByWallet, http.MethodGet,
		"/api/v1/wallets/3/transactions?limit=500&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageDTO[transactionDTO]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, maxPageLimit, page.Limit)
	assert.Equal(t, 20, page.Offset)
	assert.Equal(t, 41, page.Total)

	rec, _ = serve(t, "GET /api/v1/wallets/{id}/transactions", h.ListByWallet, http.MethodGet,
		"/api/v1/wallets/3/transactions?offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubCampaigns struct {
	err error
}

func (s *stubCampaigns) Create(_ context.Context, req campaign.CampaignRequest) (*domain.Campaign, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Campaign{ID: 1, Kind: req.Kind, Name: req.Name, ProductIDs: req.ProductIDs}, nil
}

func (s *stubCampaigns) Update(ctx context.Context, _ int64, req campaign.CampaignRequest) (*domain.Campaign, error) {
	return s.Create(ctx, req)
}

func (s *stubCampaigns) Get(context.Context, int64) (*domain.Campaign, error) {
	return nil, domain.ErrCampaignNotFound
}

func (s *stubCampaigns) ListActiveForProduct(context.Context, int64) ([]domain.Campaign, error) {
	return nil, nil
}

func campaignBody(products string) string {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf(`{"kind":"event_discount","name":"Flash","start_date":%q,"end_date":%q,"product_ids":%s}`,
		start.Format(time.RFC3339), start.AddDate(0, 0, 7).Format(time.RFC3339), products)
}

func TestCampaignHandler_ConflictDetails(t *testing.T) {
	conflict := &domain.PromotionConflictError{Conflicts: []domain.PromotionConflict{{ProductID: 5, EventName: "Ramadan Sale"}}}
	h := NewCampaignHandler(&stubCampaigns{err: fmt.Errorf("Create: %w", conflict)})

	rec, env := serve(t, "POST /api/v1/campaigns", h.Create, http.MethodPost, "/api/v1/campaigns", campaignBody("[5,7]"))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "PROMOTION_CONFLICT", env.Error.Code)

	var details []domain.PromotionConflict
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, conflict.Conflicts, details)
}

func TestCampaignHandler_Validation(t *testing.T) {
	h := NewCampaignHandler(&stubCampaigns{})

	rec, env := serve(t, "POST /api/v1/campaigns", h.Create, http.MethodPost, "/api/v1/campaigns", campaignBody("[]"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	var fields []FieldError
	require.NoError(t, json.Unmarshal(env.Error.Details, &fields))
	require.NotEmpty(t, fields)
	assert.Equal(t, "product_ids", fields[0].Field)

	body := `{"kind":"voucher","name":"Eid","start_date":"2026-03-01T00:00:00Z","end_date":"2026-03-08T00:00:00Z","product_ids":[1]}`
	rec, _ = serve(t, "POST /api/v1/campaigns", h.Create, http.MethodPost, "/api/v1/campaigns", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "voucher without code")

	body = `{"kind":"event_discount","name":"Eid","start_date":"2026-03-08T00:00:00Z","end_date":"2026-03-01T00:00:00Z","product_ids":[1]}`
	rec, _ = serve(t, "POST /api/v1/campaigns", h.Create, http.MethodPost, "/api/v1/campaigns", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "end before start")
}

type stubWallets struct{}

func (stubWallets) CreateWallet(_ context.Context, req service.CreateWalletRequest) (*domain.Wallet, error) {
	return &domain.Wallet{ID: 2, OwnerID: req.OwnerID, Name: req.Name, Type: req.Type, Balance: req.OpeningBalance}, nil
}

func (stubWallets) GetWallet(context.Context, int64) (*domain.Wallet, error) {
	return nil, fmt.Errorf("GetWallet: %w", domain.ErrWalletNotFound)
}

func (stubWallets) ListWallets(context.Context, int64) ([]domain.Wallet, error) {
	return nil, nil
}

func TestWalletHandler(t *testing.T) {
	h := NewWalletHandler(stubWallets{})

	rec, env := serve(t, "POST /api/v1/wallets", h.Create, http.MethodPost, "/api/v1/wallets",
		`{"owner_id":7,"name":"Till","type":"cash","opening_balance":"50"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var dto walletDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "50.00", dto.Balance)

	rec, env = serve(t, "POST /api/v1/wallets", h.Create, http.MethodPost, "/api/v1/wallets",
		`{"owner_id":7,"name":"Till","type":"crypto"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, env = serve(t, "GET /api/v1/wallets/{id}", h.Get, http.MethodGet, "/api/v1/wallets/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "WALLET_NOT_FOUND", env.Error.Code)
}

type stubTypes struct {
	side domain.EntryType
}

func (s *stubTypes) List(context.Context) ([]domain.TransactionType, error) { return nil, nil }

func (s *stubTypes) ListSubAccounts(_ context.Context, _ int64, side domain.EntryType) ([]domain.SubAccount, error) {
	s.side = side
	return []domain.SubAccount{{ID: 1, AccountID: 1, AccountType: domain.AccountTypeAsset, Name: "Cash"}}, nil
}

func TestTransactionTypeHandler_SubAccounts(t *testing.T) {
	types := &stubTypes{}
	h := NewTransactionTypeHandler(types)
	pattern := "GET /api/v1/transaction-types/{id}/sub-accounts"

	rec, _ := serve(t, pattern, h.SubAccounts, http.MethodGet, "/api/v1/transaction-types/1/sub-accounts?side=debit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.EntryTypeDebit, types.side)

	rec, env := serve(t, pattern, h.SubAccounts, http.MethodGet, "/api/v1/transaction-types/1/sub-accounts?side=up", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestShippingHandler_Filter(t *testing.T) {
	h := NewShippingHandler()
	body := `{"quotes":[
		{"courier_code":"jne","service_code":"reg","cost":"18000","eta_days":3,"available":true},
		{"courier_code":"jne","service_code":"yes","cost":"32000","eta_days":1,"available":true},
		{"courier_code":"pos","service_code":"kilat","cost":"9000","eta_days":5,"available":false}
	],"cheapest":true}`

	rec, env := serve(t, "POST /api/v1/shipping/quotes/filter", h.Filter, http.MethodPost, "/api/v1/shipping/quotes/filter", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"service_code":"reg"`)

	rec, env = serve(t, "POST /api/v1/shipping/quotes/filter", h.Filter, http.MethodPost, "/api/v1/shipping/quotes/filter",
		`{"quotes":[],"cheapest":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NO_COURIER_AVAILABLE", env.Error.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler_Readiness(t *testing.T) {
	h := NewHealthHandler(fakePinger{}, func(context.Context) error { return errors.New("redis down") })
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"degraded"`)

	h = NewHealthHandler(fakePinger{err: errors.New("no db")}, nil)
	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "cache")
}
