package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/shipping"
)

type ShippingHandler struct{}

func NewShippingHandler() *ShippingHandler {
	return &ShippingHandler{}
}

type filterQuotesRequest struct {
	Quotes     []shipping.Quote `json:"quotes" validate:"dive"`
	Couriers   []string         `json:"couriers"`
	MaxCost    *decimal.Decimal `json:"max_cost"`
	MaxETADays int              `json:"max_eta_days" validate:"gte=0"`
	Cheapest   bool             `json:"cheapest"`
}

func (h *ShippingHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req filterQuotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	opts := shipping.FilterOptions{
		Couriers:   req.Couriers,
		MaxCost:    req.MaxCost,
		MaxETADays: req.MaxETADays,
	}

	if req.Cheapest {
		q, err := shipping.Cheapest(req.Quotes, opts)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		RespondSuccess(w, http.StatusOK, []shipping.Quote{q})
		return
	}

	RespondSuccess(w, http.StatusOK, shipping.Filter(req.Quotes, opts))
}
