package service

import (
	"net/http"
	"time"
)

// CookieName is the session cookie carrying the signed admin token.
const CookieName = "admin_token"

// SessionCookie builds the session cookie for a freshly issued token.
// HTTP-only and SameSite=Lax; Lax rather than Strict so the cookie survives
// the post-login redirect. Secure is dropped in dev so http://localhost works.
func SessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie overwrites the session cookie with an immediately
// expired one. Logout has no server-side revocation: a captured token stays
// valid until its natural expiry.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	c := SessionCookie("", secure)
	c.MaxAge = -1
	return c
}
