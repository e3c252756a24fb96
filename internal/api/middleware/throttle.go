package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/config"
	"github.com/pagebound/bookstore-api/internal/domain"
)

// Throttle applies a per-minute request budget tiered by role: anonymous
// traffic keyed by client IP, authenticated traffic keyed by user ID. Place
// it after Authenticate on authenticated groups and standalone on public
// ones.
func Throttle(cfg config.ThrottleConfig) func(http.Handler) http.Handler {
	keyByUser := httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		if userID, ok := GetUserID(r); ok {
			return userID.String(), nil
		}
		return httprate.KeyByIP(r)
	})

	anonymous := httprate.Limit(cfg.AnonymousPerMinute, time.Minute, httprate.WithKeyByIP())
	customer := httprate.Limit(cfg.CustomerPerMinute, time.Minute, keyByUser)
	staff := httprate.Limit(cfg.StaffPerMinute, time.Minute, keyByUser)

	return func(next http.Handler) http.Handler {
		anonNext := anonymous(next)
		customerNext := customer(next)
		staffNext := staff(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(shared.RoleContextKey).(domain.Role)
			switch {
			case !ok:
				anonNext.ServeHTTP(w, r)
			case role.IsStaff() || role == domain.RoleDelivery:
				staffNext.ServeHTTP(w, r)
			default:
				customerNext.ServeHTTP(w, r)
			}
		})
	}
}
