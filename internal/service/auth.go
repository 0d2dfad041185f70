package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/store"
)

// ErrInvalidCredentials is returned for every authentication failure. A
// missing account and a wrong password are deliberately indistinguishable
// so the login endpoint cannot be used to enumerate admin emails.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	// TokenTTL is the session lifetime. The JWT expiry and the cookie
	// Max-Age stay in lockstep.
	TokenTTL = 7 * 24 * time.Hour

	bcryptCost = 12
)

// Principal is the identity carried by a verified session token.
type Principal struct {
	AdminID int64
	Email   string
}

// AuthService verifies admin credentials and issues/validates session tokens.
type AuthService struct {
	store  *store.Store
	secret []byte
}

// NewAuthService creates the auth service. The signing secret is mandatory;
// callers treat an error here as fatal at startup.
func NewAuthService(st *store.Store, secret string) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("jwt signing secret is required")
	}
	return &AuthService{store: st, secret: []byte(secret)}, nil
}

// Secret exposes the signing key for the lite verifier used by the request
// gate, which runs outside this service.
func (s *AuthService) Secret() []byte {
	return s.secret
}

// HashPassword computes the bcrypt hash stored for an admin password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate looks up the admin by email and verifies the password against
// the stored bcrypt hash. Both lookup miss and hash mismatch return
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.Admin, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	_ = s.store.UpdateAdminLastLogin(ctx, admin.ID)
	return admin, nil
}

// IssueToken mints a signed session token for the given admin, expiring
// TokenTTL from now.
func (s *AuthService) IssueToken(adminID int64, email string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    "civicsite",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a session token and returns its principal. It fails
// closed: any malformed token, signature mismatch, or past expiry yields nil.
func (s *AuthService) VerifyToken(tokenStr string) *Principal {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil
	}
	if claims.AdminID == 0 || claims.Email == "" {
		return nil
	}
	return &Principal{AdminID: claims.AdminID, Email: claims.Email}
}

type sessionClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}
