package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/server/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, issuer string) *JWTService {
	cfg := &config.JWTConfig{
		Secret:          testSecret,
		Issuer:          issuer,
		ExpirationHours: 24,
	}
	service := NewJWTService(cfg)
	service.now = func() time.Time { return testNow }
	return service
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := setupTestJWTService(t, "github-resume")

	token, err := service.GenerateToken("ada", "gho_abc")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Login)
	assert.Equal(t, "gho_abc", claims.AccessToken)
	assert.Equal(t, "github-resume", claims.Issuer)
	assert.Equal(t, middleware.Credential{Login: "ada", AccessToken: "gho_abc"}, claims.GetCredential())
}

func TestJWTService_Expired(t *testing.T) {
	service := setupTestJWTService(t, "")
	token, err := service.GenerateToken("ada", "gho_abc")
	require.NoError(t, err)

	service.now = func() time.Time { return testNow.Add(25 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_WrongSecret(t *testing.T) {
	service := setupTestJWTService(t, "")
	token, err := service.GenerateToken("ada", "gho_abc")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: strings.Repeat("x", 32), ExpirationHours: 24})
	other.now = service.now
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_IssuerMismatch(t *testing.T) {
	minted := setupTestJWTService(t, "someone-else")
	token, err := minted.GenerateToken("ada", "gho_abc")
	require.NoError(t, err)

	_, err = setupTestJWTService(t, "github-resume").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	service := setupTestJWTService(t, "")
	claims := &Claims{
		Login:       "ada",
		AccessToken: "gho_abc",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = service.ValidateToken(unsigned)
	assert.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = service.ValidateToken(hs512)
	assert.Error(t, err)
}

func TestJWTService_Malformed(t *testing.T) {
	service := setupTestJWTService(t, "")

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed token")
}

func TestJWTAuthenticator_WithService(t *testing.T) {
	service := setupTestJWTService(t, "")
	auth := middleware.NewJWTAuthenticator(service.AsTokenValidator())

	token, err := service.GenerateToken("ada", "gho_abc")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/github/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	cred, ok := auth.Authenticate(req)
	require.True(t, ok)
	assert.Equal(t, "gho_abc", cred.AccessToken)

	noAccess, err := service.GenerateToken("ada", "")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+noAccess)
	_, ok = auth.Authenticate(req)
	assert.False(t, ok, "sessions without a GitHub token are rejected")

	req.Header.Set("Authorization", "Bearer garbage")
	_, ok = auth.Authenticate(req)
	assert.False(t, ok)
}
