// Package middleware provides HTTP request governance: authentication,
// rate limiting and schema validation of inbound API requests.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// credentialKey is the context key for storing the authenticated credential.
const credentialKey ContextKey = "credential"

// Credential identifies an authenticated caller. AccessToken is the opaque
// GitHub token the data source uses on the caller's behalf.
type Credential struct {
	Login       string
	AccessToken string
}

// Authenticator resolves the caller's credential, reporting false when absent.
type Authenticator interface {
	Authenticate(r *http.Request) (Credential, bool)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(r *http.Request) (Credential, bool)

// Authenticate calls f(r).
func (f AuthenticatorFunc) Authenticate(r *http.Request) (Credential, bool) {
	return f(r)
}

// TokenValidator is an interface for validating session tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (CredentialGetter, error)
}

// CredentialGetter is an interface for extracting the credential from token claims.
type CredentialGetter interface {
	GetCredential() Credential
}

// JWTAuthenticator authenticates requests carrying a session token in the
// Authorization header.
type JWTAuthenticator struct {
	validator TokenValidator
}

// NewJWTAuthenticator creates an authenticator backed by validator.
func NewJWTAuthenticator(validator TokenValidator) *JWTAuthenticator {
	return &JWTAuthenticator{validator: validator}
}

// Authenticate validates the bearer token. Tokens without a GitHub access
// token are treated as absent.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (Credential, bool) {
	tokenString, ok := BearerToken(r)
	if !ok {
		return Credential{}, false
	}

	claims, err := a.validator.ValidateToken(tokenString)
	if err != nil {
		return Credential{}, false
	}

	cred := claims.GetCredential()
	if cred.AccessToken == "" {
		return Credential{}, false
	}
	return cred, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// WithCredential returns a copy of ctx carrying cred.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// CredentialFrom extracts the authenticated credential from ctx.
func CredentialFrom(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(credentialKey).(Credential)
	return cred, ok
}
