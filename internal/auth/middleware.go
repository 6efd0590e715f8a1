package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sha1n/mcp-prompts-server-go/internal/config"
)

// Middleware wraps an HTTP handler
type Middleware func(http.Handler) http.Handler

var (
	errMissingCredentials = errors.New("missing credentials")
	errInvalidCredentials = errors.New("invalid credentials")
)

// authenticator inspects a request and returns an error when it is not authenticated
type authenticator func(r *http.Request) error

// tokenVerifier is the part of *oidc.IDTokenVerifier the middleware uses
type tokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// NewMiddleware creates the authentication middleware selected by settings.
// OIDC provider discovery uses ctx.
func NewMiddleware(ctx context.Context, settings config.AuthSettings) (Middleware, error) {
	switch settings.Type {
	case "none", "":
		return func(next http.Handler) http.Handler { return next }, nil
	case "basic":
		return guard(basicAuthenticator(settings.Basic), `Basic realm="mcp-prompts"`), nil
	case "apikey":
		return guard(apiKeyAuthenticator(settings.APIKey), ""), nil
	case "oidc":
		provider, err := oidc.NewProvider(ctx, settings.OIDC.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		verifier := provider.Verifier(&oidc.Config{ClientID: settings.OIDC.ClientID})
		return guard(bearerAuthenticator(verifier), "Bearer"), nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", settings.Type)
	}
}

// guard rejects requests the authenticator does not accept with 401
func guard(authenticate authenticator, challenge string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authenticate(r); err != nil {
				slog.Warn("Rejected unauthenticated request", "path", r.URL.Path, "remote", r.RemoteAddr, "error", err)
				if challenge != "" {
					w.Header().Set("WWW-Authenticate", challenge)
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func basicAuthenticator(settings config.BasicAuthSettings) authenticator {
	return func(r *http.Request) error {
		user, pass, ok := r.BasicAuth()
		if !ok {
			return errMissingCredentials
		}
		if !secureEqual(user, settings.Username) || !secureEqual(pass, settings.Password) {
			return errInvalidCredentials
		}
		return nil
	}
}

// apiKeyAuthenticator accepts the key from the X-API-Key header or the api_key query parameter
func apiKeyAuthenticator(apiKey string) authenticator {
	return func(r *http.Request) error {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}
		if key == "" {
			return errMissingCredentials
		}
		if !secureEqual(key, apiKey) {
			return errInvalidCredentials
		}
		return nil
	}
}

// bearerAuthenticator verifies an ID token taken from the Authorization header
// or, for SSE clients that cannot set headers, the token query parameter
func bearerAuthenticator(verifier tokenVerifier) authenticator {
	return func(r *http.Request) error {
		token := bearerToken(r)
		if token == "" {
			return errMissingCredentials
		}
		if _, err := verifier.Verify(r.Context(), token); err != nil {
			return fmt.Errorf("%w: %v", errInvalidCredentials, err)
		}
		return nil
	}
}

func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
