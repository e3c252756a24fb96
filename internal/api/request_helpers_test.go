package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookListParams(t *testing.T) {
	t.Parallel()

	q := url.Values{}
	q.Set("page", "2")
	q.Set("page_size", "50")
	q.Set("search", "bulgakov")
	q.Set("order_by", "-price")
	q.Set("genre", "fiction")
	q.Set("is_new", "true")
	q.Set("price_min", "5.50")
	q.Set("year_max", "1990")
	q.Set("rating_min", "3.5")

	params := parseBookListParams(q)

	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 50, params.PageSize)
	assert.Equal(t, "bulgakov", params.Search)
	assert.Equal(t, "-price", params.OrderBy)
	assert.Equal(t, "fiction", params.GenreSlug)
	require.NotNil(t, params.IsNew)
	assert.True(t, *params.IsNew)
	require.NotNil(t, params.PriceMin)
	assert.InDelta(t, 5.50, *params.PriceMin, 0.001)
	require.NotNil(t, params.YearMax)
	assert.Equal(t, 1990, *params.YearMax)
	require.NotNil(t, params.RatingMin)
	assert.InDelta(t, 3.5, *params.RatingMin, 0.001)
	assert.Nil(t, params.PriceMax)
	assert.Nil(t, params.IsBC)
}

func TestParseListParams_IgnoresMalformedValues(t *testing.T) {
	t.Parallel()

	q := url.Values{}
	q.Set("page", "first")
	q.Set("page_size", "many")
	q.Set("price_min", "cheap")
	q.Set("is_new", "kinda")
	q.Set("year_min", "ancient")

	params := parseBookListParams(q)

	assert.Zero(t, params.Page)
	assert.Zero(t, params.PageSize)
	assert.Nil(t, params.PriceMin)
	assert.Nil(t, params.IsNew)
	assert.Nil(t, params.YearMin)
}

func TestParseOrderListParams_Dates(t *testing.T) {
	t.Parallel()

	q := url.Values{}
	q.Set("placed_after", "2026-01-15")
	q.Set("placed_before", "2026-02-01T12:30:00Z")
	q.Set("total_min", "10")

	params := parseOrderListParams(q)

	require.NotNil(t, params.PlacedAfter)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *params.PlacedAfter)
	require.NotNil(t, params.PlacedBefore)
	assert.Equal(t, time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC), *params.PlacedBefore)
	require.NotNil(t, params.TotalMin)
	assert.InDelta(t, 10.0, *params.TotalMin, 0.001)
}
