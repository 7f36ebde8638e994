package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/service/campaign"
)

type campaignService interface {
	Create(ctx context.Context, req campaign.CampaignRequest) (*domain.Campaign, error)
	Update(ctx context.Context, id int64, req campaign.CampaignRequest) (*domain.Campaign, error)
	Get(ctx context.Context, id int64) (*domain.Campaign, error)
	ListActiveForProduct(ctx context.Context, productID int64) ([]domain.Campaign, error)
}

type CampaignHandler struct {
	campaigns campaignService
}

func NewCampaignHandler(campaigns campaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

type campaignRequest struct {
	Kind       string    `json:"kind" validate:"required,oneof=event_discount product_discount voucher"`
	Name       string    `json:"name" validate:"required,max=200"`
	Code       *string   `json:"code" validate:"required_if=Kind voucher"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	ProductIDs []int64   `json:"product_ids" validate:"required,min=1,dive,gt=0"`
}

func (r campaignRequest) toServiceRequest() campaign.CampaignRequest {
	return campaign.CampaignRequest{
		Kind:       domain.CampaignKind(r.Kind),
		Name:       r.Name,
		Code:       r.Code,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		ProductIDs: r.ProductIDs,
	}
}

type campaignDTO struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	Code       *string   `json:"code,omitempty"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	ProductIDs []int64   `json:"product_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toCampaignDTO(c *domain.Campaign) campaignDTO {
	return campaignDTO{
		ID:         c.ID,
		Kind:       string(c.Kind),
		Name:       c.Name,
		Code:       c.Code,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		ProductIDs: c.ProductIDs,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.campaigns.Create(r.Context(), req.toServiceRequest())
	if err != nil {
		logging.FromContext(r.Context()).Warn("campaign rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCampaignDTO(c))
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.campaigns.Update(r.Context(), id, req.toServiceRequest())
	if err != nil {
		logging.FromContext(r.Context()).Warn("campaign update rejected", "campaign_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTO(c))
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTO(c))
}

func (h *CampaignHandler) ListActiveForProduct(w http.ResponseWriter, r *http.Request) {
	productID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	campaigns, err := h.campaigns.ListActiveForProduct(r.Context(), productID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]campaignDTO, len(campaigns))
	for i := range campaigns {
		dtos[i] = toCampaignDTO(&campaigns[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
