package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromotionConflictError(t *testing.T) {
	err := fmt.Errorf("Create: %w", &PromotionConflictError{
		Conflicts: []PromotionConflict{{ProductID: 5, EventName: "Ramadan Sale"}},
	})

	assert.ErrorIs(t, err, ErrPromotionConflict)

	var conflictErr *PromotionConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, int64(5), conflictErr.Conflicts[0].ProductID)
	assert.Contains(t, err.Error(), `product 5 in "Ramadan Sale"`)
}

func TestCampaignIsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := &Campaign{EndDate: now.Add(time.Hour)}
	assert.True(t, c.IsActive(now))

	c.EndDate = now
	assert.False(t, c.IsActive(now), "a campaign ending exactly now no longer holds its products")
}
