package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/service"
)

// SessionPrincipalKey is the context key for the authenticated admin.
const SessionPrincipalKey contextKey = "session_principal"

// Verifier validates a raw session token. The gate runs on every protected
// request, so implementations must be pure and in-memory: no database access.
type Verifier func(token string) *service.Principal

// RequireSession guards the admin pages. Requests without a valid session
// cookie are redirected to loginPath with the originally requested path in
// the callbackUrl parameter so navigation resumes there after login.
func RequireSession(verify Verifier, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := sessionPrincipal(r, verify)
			if principal == nil {
				q := url.Values{"callbackUrl": {r.URL.Path}}
				http.Redirect(w, r, loginPath+"?"+q.Encode(), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

// RequireSessionAPI guards the JSON admin endpoints. Same check as
// RequireSession, but failures get a 401 envelope instead of a redirect.
func RequireSessionAPI(verify Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := sessionPrincipal(r, verify)
			if principal == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(model.ErrorResponse{
					Error: model.ErrorDetail{Code: http.StatusUnauthorized, Message: "Unauthorized"},
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

func sessionPrincipal(r *http.Request, verify Verifier) *service.Principal {
	cookie, err := r.Cookie(service.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return verify(cookie.Value)
}

func withPrincipal(ctx context.Context, p *service.Principal) context.Context {
	return context.WithValue(ctx, SessionPrincipalKey, p)
}

// GetPrincipal extracts the authenticated admin from the context. Returns
// nil for unauthenticated requests.
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(SessionPrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}
