package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/apperr"
)

// TokenTTL is the fixed validity window for issued bearer tokens.
const TokenTTL = 8 * time.Hour

// Claims are the application claims embedded in every bearer token.
// The schema claim lets the request pipeline route a pooled connection
// without a tenant lookup; the session ID ties the token to a revocable
// session row in the shared schema.
type Claims struct {
	UserID    uuid.UUID `json:"uid"`
	TenantID  uuid.UUID `json:"tid"`
	Schema    string    `json:"schema"`
	Role      string    `json:"role"`
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a token issuer/verifier. The secret must be at
// least 32 bytes; a short secret is a configuration error.
func NewTokens(secret []byte) (*Tokens, error) {
	if len(secret) < 32 {
		return nil, errors.New("token signing secret must be at least 32 bytes")
	}
	return &Tokens{secret: secret, now: time.Now}, nil
}

// Issue signs a token for an admitted session.
func (t *Tokens) Issue(userID, tenantID uuid.UUID, schema, role string, sessionID uuid.UUID) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID:    userID,
		TenantID:  tenantID,
		Schema:    schema,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to sign token", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
// Signature or expiry failures return an Auth error; structurally valid
// tokens missing required claims do too.
func (t *Tokens) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		log.Debug().Err(err).Msg("token parse failed")
		return nil, apperr.New(apperr.Auth, "invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperr.New(apperr.Auth, "invalid or expired token")
	}

	if claims.UserID == uuid.Nil || claims.TenantID == uuid.Nil ||
		claims.SessionID == uuid.Nil || claims.Schema == "" || claims.Role == "" {
		return nil, apperr.New(apperr.Auth, "token is missing required claims")
	}

	return claims, nil
}

// FromRequest extracts and verifies the bearer token on r.
func (t *Tokens) FromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, apperr.New(apperr.Auth, "missing bearer token")
	}
	return t.Verify(tokenStr)
}
