// Package shipping ranks courier quotes for a parcel. Quotes come from an
// upstream rate service; this package only filters and orders them.
package shipping

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type Quote struct {
	CourierCode string          `json:"courier_code" validate:"required"`
	CourierName string          `json:"courier_name"`
	ServiceCode string          `json:"service_code"`
	Cost        decimal.Decimal `json:"cost"`
	ETADays     int             `json:"eta_days" validate:"gte=0"`
	Available   bool            `json:"available"`
}

// FilterOptions narrows a quote list. Zero values mean "no restriction".
type FilterOptions struct {
	Couriers   []string
	MaxCost    *decimal.Decimal
	MaxETADays int
}

func (o FilterOptions) allows(q Quote) bool {
	if !q.Available {
		return false
	}
	if len(o.Couriers) > 0 && !slices.Contains(o.Couriers, q.CourierCode) {
		return false
	}
	if o.MaxCost != nil && q.Cost.GreaterThan(*o.MaxCost) {
		return false
	}
	if o.MaxETADays > 0 && q.ETADays > o.MaxETADays {
		return false
	}
	return true
}

// Filter keeps the cheapest allowed service per courier, ordered by cost, then
// ETA, then courier code.
func Filter(quotes []Quote, opts FilterOptions) []Quote {
	best := make(map[string]Quote)
	for _, q := range quotes {
		if !opts.allows(q) {
			continue
		}
		cur, ok := best[q.CourierCode]
		if !ok || compareQuotes(q, cur) < 0 {
			best[q.CourierCode] = q
		}
	}

	out := make([]Quote, 0, len(best))
	for _, q := range best {
		out = append(out, q)
	}
	slices.SortFunc(out, compareQuotes)
	return out
}

func Cheapest(quotes []Quote, opts FilterOptions) (Quote, error) {
	filtered := Filter(quotes, opts)
	if len(filtered) == 0 {
		return Quote{}, fmt.Errorf("Cheapest: %w", domain.ErrNoCourierAvailable)
	}
	return filtered[0], nil
}

func compareQuotes(a, b Quote) int {
	if c := a.Cost.Cmp(b.Cost); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ETADays, b.ETADays); c != 0 {
		return c
	}
	if c := cmp.Compare(a.CourierCode, b.CourierCode); c != 0 {
		return c
	}
	return cmp.Compare(a.ServiceCode, b.ServiceCode)
}
