package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/civicsite/civicsite/internal/ratelimit"
	"github.com/civicsite/civicsite/internal/service"
)

const (
	loginPagePath = "/admin/login"
	dashboardPath = "/admin/dashboard"

	maxEmailLength    = 320 // RFC 5321
	maxPasswordLength = 1024
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler serves login and logout. Login is rate-limited per client IP
// before any credential work happens.
type AuthHandler struct {
	auth          *service.AuthService
	limiter       *ratelimit.Limiter
	logger        *slog.Logger
	secureCookies bool
}

// NewAuthHandler creates an AuthHandler. secureCookies should be false only
// in local development, where the site runs over plain HTTP.
func NewAuthHandler(auth *service.AuthService, limiter *ratelimit.Limiter, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, logger: logger, secureCookies: secureCookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Redirect string `json:"redirect"`
}

// Login authenticates an admin and sets the session cookie.
// POST /api/auth/login
//
// The admin login page posts a form; API clients post JSON. Form requests
// get redirect responses (back to the login page on failure, on to the
// callback target on success) so the flow works without client-side script.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	isForm := strings.Contains(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

	ip := ratelimit.ClientIP(r)
	rl := h.limiter.Check(ratelimit.LoginKey(ip), ratelimit.LoginLimit, ratelimit.LoginWindow)
	if !rl.Allowed {
		minutes := (rl.RetryAfter + 59) / 60
		plural := "s"
		if minutes == 1 {
			plural = ""
		}
		msg := fmt.Sprintf("Too many login attempts. Try again in %d minute%s.", minutes, plural)
		if isForm {
			h.redirectLoginError(w, r, msg)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		writeError(w, http.StatusTooManyRequests, msg)
		return
	}

	var email, password, redirectTo string
	if isForm {
		if err := r.ParseForm(); err != nil {
			h.redirectLoginError(w, r, "Invalid form body")
			return
		}
		email = r.PostFormValue("email")
		password = r.PostFormValue("password")
		redirectTo = r.PostFormValue("redirect")
	} else {
		var req loginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		email, password, redirectTo = req.Email, req.Password, req.Redirect
	}

	if msg := validateLoginInput(email, password); msg != "" {
		h.loginFailure(w, r, isForm, http.StatusBadRequest, msg)
		return
	}

	admin, err := h.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Identical message for unknown email and wrong password.
			h.loginFailure(w, r, isForm, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		serverError(w, h.logger, "login", err)
		return
	}

	token, err := h.auth.IssueToken(admin.ID, admin.Email)
	if err != nil {
		serverError(w, h.logger, "issue session token", err)
		return
	}

	http.SetCookie(w, service.SessionCookie(token, h.secureCookies))
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")

	if isForm {
		http.Redirect(w, r, safeRedirect(redirectTo), http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in successfully"})
}

// Logout overwrites the session cookie with an immediately expired one.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, service.ExpiredSessionCookie(h.secureCookies))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func validateLoginInput(email, password string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "Email is required"
	case len(email) > maxEmailLength:
		return "Email is too long"
	case !emailRegex.MatchString(email):
		return "Invalid email format"
	case strings.TrimSpace(password) == "":
		return "Password is required"
	case len(password) > maxPasswordLength:
		return "Password is too long"
	}
	return ""
}

// safeRedirect only allows same-site absolute paths as post-login targets.
func safeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return dashboardPath
}

func (h *AuthHandler) loginFailure(w http.ResponseWriter, r *http.Request, isForm bool, code int, msg string) {
	if isForm {
		h.redirectLoginError(w, r, msg)
		return
	}
	writeError(w, code, msg)
}

func (h *AuthHandler) redirectLoginError(w http.ResponseWriter, r *http.Request, msg string) {
	q := url.Values{"error": {msg}}
	http.Redirect(w, r, loginPagePath+"?"+q.Encode(), http.StatusFound)
}
