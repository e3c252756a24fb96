package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

// getActorFromContext extracts the authenticated identity placed in the
// context by the authentication middleware.
func getActorFromContext(r *http.Request) (order.Actor, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return order.Actor{}, false
	}
	role, ok := r.Context().Value(shared.RoleContextKey).(domain.Role)
	if !ok {
		return order.Actor{}, false
	}
	return order.Actor{ID: userID, Role: role}, true
}

// requireActor extracts the actor or writes a 401 and reports failure.
func requireActor(w http.ResponseWriter, r *http.Request) (order.Actor, bool) {
	actor, ok := getActorFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Authentication required")
		return order.Actor{}, false
	}
	return actor, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// Query parameter parsing for list endpoints. Malformed values are ignored
// rather than rejected, matching the usual lenient filter behaviour.

func parseListParams(q url.Values) store.ListParams {
	p := store.ListParams{
		Search:  q.Get("search"),
		OrderBy: q.Get("order_by"),
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil {
		p.PageSize = v
	}
	return p
}

func queryInt(q url.Values, key string) *int {
	if s := q.Get(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return &v
		}
	}
	return nil
}

func queryFloat(q url.Values, key string) *float64 {
	if s := q.Get(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

func queryBool(q url.Values, key string) *bool {
	if s := q.Get(key); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return &v
		}
	}
	return nil
}

func queryTime(q url.Values, key string) *time.Time {
	if s := q.Get(key); s != "" {
		if v, err := time.Parse(time.RFC3339, s); err == nil {
			return &v
		}
		if v, err := time.Parse("2006-01-02", s); err == nil {
			return &v
		}
	}
	return nil
}

func parseBookListParams(q url.Values) store.BookListParams {
	return store.BookListParams{
		ListParams:  parseListParams(q),
		GenreSlug:   q.Get("genre"),
		FormatSlug:  q.Get("format"),
		StockSlug:   q.Get("stock"),
		Language:    q.Get("language"),
		IsNew:       queryBool(q, "is_new"),
		IsBC:        queryBool(q, "is_bc"),
		DiscountMin: queryInt(q, "discount_min"),
		DiscountMax: queryInt(q, "discount_max"),
		YearMin:     queryInt(q, "year_min"),
		YearMax:     queryInt(q, "year_max"),
		PriceMin:    queryFloat(q, "price_min"),
		PriceMax:    queryFloat(q, "price_max"),
		RatingMin:   queryFloat(q, "rating_min"),
		RatingMax:   queryFloat(q, "rating_max"),
	}
}

func parseReviewListParams(q url.Values) store.ReviewListParams {
	return store.ReviewListParams{
		ListParams:    parseListParams(q),
		RatingMin:     queryInt(q, "rating_min"),
		RatingMax:     queryInt(q, "rating_max"),
		CreatedAfter:  queryTime(q, "created_after"),
		CreatedBefore: queryTime(q, "created_before"),
	}
}

func parseCartListParams(q url.Values) store.CartListParams {
	return store.CartListParams{
		ListParams:   parseListParams(q),
		QuantityMin:  queryInt(q, "quantity_min"),
		QuantityMax:  queryInt(q, "quantity_max"),
		UnitPriceMin: queryFloat(q, "unit_price_min"),
		UnitPriceMax: queryFloat(q, "unit_price_max"),
		PriceMin:     queryFloat(q, "price_min"),
		PriceMax:     queryFloat(q, "price_max"),
	}
}

func parseOrderListParams(q url.Values) store.OrderListParams {
	return store.OrderListParams{
		ListParams:   parseListParams(q),
		Status:       domain.OrderStatus(q.Get("status")),
		TotalMin:     queryFloat(q, "total_min"),
		TotalMax:     queryFloat(q, "total_max"),
		PlacedAfter:  queryTime(q, "placed_after"),
		PlacedBefore: queryTime(q, "placed_before"),
	}
}

func parseHistoryListParams(q url.Values) store.HistoryListParams {
	return store.HistoryListParams{
		ListParams: parseListParams(q),
		Action:     q.Get("action"),
		After:      queryTime(q, "after"),
		Before:     queryTime(q, "before"),
	}
}
