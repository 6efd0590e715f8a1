package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sha1n/mcp-prompts-server-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(mw Middleware, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(w, req)
	return w
}

func TestBasicAuth(t *testing.T) {
	mw := guard(basicAuthenticator(config.BasicAuthSettings{Username: "user", Password: "password"}), `Basic realm="mcp-prompts"`)

	tests := []struct {
		name     string
		user     string
		pass     string
		setAuth  bool
		wantCode int
	}{
		{name: "Valid", user: "user", pass: "password", setAuth: true, wantCode: http.StatusOK},
		{name: "Wrong password", user: "user", pass: "wrong", setAuth: true, wantCode: http.StatusUnauthorized},
		{name: "Wrong user", user: "other", pass: "password", setAuth: true, wantCode: http.StatusUnauthorized},
		{name: "Missing", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}

			w := serve(mw, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="mcp-prompts"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	mw := guard(apiKeyAuthenticator("secret-key"), "")

	tests := []struct {
		name     string
		target   string
		header   string
		wantCode int
	}{
		{name: "Valid header", target: "/", header: "secret-key", wantCode: http.StatusOK},
		{name: "Valid query param", target: "/?api_key=secret-key", wantCode: http.StatusOK},
		{name: "Header wins over query", target: "/?api_key=secret-key", header: "wrong", wantCode: http.StatusUnauthorized},
		{name: "Invalid key", target: "/", header: "wrong", wantCode: http.StatusUnauthorized},
		{name: "Missing key", target: "/", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}

			w := serve(mw, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Empty(t, w.Header().Get("WWW-Authenticate"))
		})
	}
}

type fakeVerifier struct {
	validToken string
	seen       string
}

func (v *fakeVerifier) Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	v.seen = rawIDToken
	if rawIDToken != v.validToken {
		return nil, errors.New("signature mismatch")
	}
	return &oidc.IDToken{}, nil
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		header    string
		wantCode  int
		wantToken string
	}{
		{name: "Valid header", target: "/", header: "Bearer good", wantCode: http.StatusOK, wantToken: "good"},
		{name: "Valid query param", target: "/?token=good", wantCode: http.StatusOK, wantToken: "good"},
		{name: "Invalid token", target: "/", header: "Bearer bad", wantCode: http.StatusUnauthorized, wantToken: "bad"},
		{name: "Non bearer scheme falls back to query", target: "/?token=good", header: "Basic abc", wantCode: http.StatusOK, wantToken: "good"},
		{name: "Missing token", target: "/", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{validToken: "good"}
			mw := guard(bearerAuthenticator(verifier), "Bearer")

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := serve(mw, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantToken, verifier.seen)
		})
	}
}

func TestBearerAuth_WrapsVerifierError(t *testing.T) {
	authenticate := bearerAuthenticator(&fakeVerifier{validToken: "good"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")

	err := authenticate(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidCredentials))
	assert.Contains(t, err.Error(), "signature mismatch")
}

func TestNewMiddleware(t *testing.T) {
	ctx := context.Background()

	t.Run("None", func(t *testing.T) {
		mw, err := NewMiddleware(ctx, config.AuthSettings{Type: "none"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, serve(mw, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	})

	t.Run("Empty type", func(t *testing.T) {
		mw, err := NewMiddleware(ctx, config.AuthSettings{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, serve(mw, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	})

	t.Run("Basic", func(t *testing.T) {
		mw, err := NewMiddleware(ctx, config.AuthSettings{
			Type:  "basic",
			Basic: config.BasicAuthSettings{Username: "u", Password: "p"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serve(mw, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	})

	t.Run("API key", func(t *testing.T) {
		mw, err := NewMiddleware(ctx, config.AuthSettings{Type: "apikey", APIKey: "k"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "k")
		assert.Equal(t, http.StatusOK, serve(mw, req).Code)
	})

	t.Run("OIDC discovery failure", func(t *testing.T) {
		issuer := httptest.NewServer(http.NotFoundHandler())
		defer issuer.Close()

		_, err := NewMiddleware(ctx, config.AuthSettings{
			Type: "oidc",
			OIDC: config.OIDCSettings{IssuerURL: issuer.URL, ClientID: "client"},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create OIDC provider")
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := NewMiddleware(ctx, config.AuthSettings{Type: "unknown"})
		assert.Error(t, err)
	})
}
