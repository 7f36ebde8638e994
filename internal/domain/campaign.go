package domain

import (
	"fmt"
	"strings"
	"time"
)

type CampaignKind string

const (
	CampaignKindEventDiscount   CampaignKind = "event_discount"
	CampaignKindProductDiscount CampaignKind = "product_discount"
	CampaignKindVoucher         CampaignKind = "voucher"
)

func (k CampaignKind) IsValid() bool {
	switch k {
	case CampaignKindEventDiscount, CampaignKindProductDiscount, CampaignKindVoucher:
		return true
	}
	return false
}

type Campaign struct {
	ID         int64
	Kind       CampaignKind
	Name       string
	Code       *string
	StartDate  time.Time
	EndDate    time.Time
	ProductIDs []int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the campaign still holds its products at now.
func (c *Campaign) IsActive(now time.Time) bool {
	return c.EndDate.After(now)
}

type PromotionConflict struct {
	ProductID int64  `json:"product_id"`
	EventName string `json:"event_name"`
}

type PromotionConflictError struct {
	Conflicts []PromotionConflict
}

func (e *PromotionConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("product %d in %q", c.ProductID, c.EventName)
	}
	return fmt.Sprintf("%s: %s", ErrPromotionConflict, strings.Join(parts, ", "))
}

func (e *PromotionConflictError) Unwrap() error { return ErrPromotionConflict }
