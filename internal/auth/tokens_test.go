package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojista-hq/lojista/internal/apperr"
)

var testSecret = []byte("test-secret-key-min-32-bytes-long!!")

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tokens, err := NewTokens(testSecret)
	require.NoError(t, err)
	return tokens
}

func TestNewTokensRejectsShortSecret(t *testing.T) {
	_, err := NewTokens([]byte("too short"))
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	userID := uuid.New()
	tenantID := uuid.New()
	sessionID := uuid.New()

	signed, err := tokens.Issue(userID, tenantID, "t_acme_12ab34cd", "user", sessionID)
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "t_acme_12ab34cd", claims.Schema)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, sessionID, claims.SessionID)
}

func TestTokenTampered(t *testing.T) {
	tokens := newTestTokens(t)

	signed, err := tokens.Issue(uuid.New(), uuid.New(), "t_acme", "user", uuid.New())
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tokens.Verify(tampered)
	require.Error(t, err)
	assert.Equal(t, apperr.Auth, apperr.KindOf(err))
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := newTestTokens(t)
	verifier, err := NewTokens([]byte("another-secret-key-min-32-bytes-long"))
	require.NoError(t, err)

	signed, err := issuer.Issue(uuid.New(), uuid.New(), "t_acme", "user", uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.Error(t, err)
	assert.Equal(t, apperr.Auth, apperr.KindOf(err))
}

func TestTokenExpired(t *testing.T) {
	tokens := newTestTokens(t)

	signed, err := tokens.Issue(uuid.New(), uuid.New(), "t_acme", "user", uuid.New())
	require.NoError(t, err)

	// Move the verifier's clock past the TTL.
	tokens.now = func() time.Time { return time.Now().Add(TokenTTL + time.Minute) }

	_, err = tokens.Verify(signed)
	require.Error(t, err)
	assert.Equal(t, apperr.Auth, apperr.KindOf(err))
}

func TestTokenMissingClaims(t *testing.T) {
	tokens := newTestTokens(t)

	// A structurally valid token signed with our key but without the
	// application claims must not authenticate.
	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := bare.SignedString(testSecret)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.Error(t, err)
	assert.Equal(t, apperr.Auth, apperr.KindOf(err))
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	tokens := newTestTokens(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:    uuid.New(),
		TenantID:  uuid.New(),
		Schema:    "t_acme",
		Role:      "admin",
		SessionID: uuid.New(),
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.Error(t, err)
}
