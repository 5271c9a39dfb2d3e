package core

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/mock"
	"github.com/quillhq/quill/oauth2"
)

const testSecret = "test_secret_32_bytes_long_xxxxxx"

// MockAuth implements the Authenticator interface for testing
type MockAuth struct {
	AuthenticateFunc func(r *http.Request) (*db.User, error, jsonResponse)
}

func (m *MockAuth) Authenticate(r *http.Request) (*db.User, error, jsonResponse) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(r)
	}
	return nil, errAuth, errorNoAuthHeader
}

// MockReconciler implements Reconciler for testing
type MockReconciler struct {
	ReconcileFunc func(profile *oauth2.Profile) (*db.User, error)
}

func (m *MockReconciler) Reconcile(profile *oauth2.Profile) (*db.User, error) {
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(profile)
	}
	return &db.User{ID: "mock-reconciled-user"}, nil
}

// MockProfileFetcher implements ProfileFetcher for testing
type MockProfileFetcher struct {
	FetchFunc func(ctx context.Context, provider config.OAuth2Provider, code, codeVerifier, redirectURI string) (*oauth2.Profile, error)
}

func (m *MockProfileFetcher) Fetch(ctx context.Context, provider config.OAuth2Provider, code, codeVerifier, redirectURI string) (*oauth2.Profile, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, provider, code, codeVerifier, redirectURI)
	}
	return &oauth2.Profile{Provider: provider.Name, ProviderUserID: "mock-id", Email: "mock@example.com"}, nil
}

// mapCache is a trivial in-memory cache.Cache[string, string] for tests.
type mapCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string]string)} }

func (c *mapCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Set(key, value string, cost int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return true
}

func (c *mapCache) SetWithTTL(key, value string, cost int64, ttl time.Duration) bool {
	return c.Set(key, value, cost)
}

func (c *mapCache) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

// newTestApp builds an App with the given mock db and sane test defaults.
func newTestApp(t *testing.T, mockDb *mock.Db) *App {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Token.Secret = testSecret
	cfg.Server.BaseURL = "https://blog.example.com"

	codec, err := crypto.NewCodec([]byte(cfg.Token.Secret))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	app := &App{}
	app.SetDb(mockDb)
	app.SetConfig(cfg)
	app.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	app.SetTokenCodec(codec)
	app.SetValidator(NewValidator())
	app.SetAuthenticator(NewDefaultAuthenticator(mockDb, codec, app.Logger()))
	app.SetReconciler(&MockReconciler{})
	app.SetProfileFetcher(&MockProfileFetcher{})
	app.SetStateCache(newMapCache())
	return app
}

// doJSON performs a request with a JSON body against the given handler.
func doJSON(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// doPlain performs a request with an arbitrary content type and no body.
func doPlain(handler http.HandlerFunc, method, target, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// checkResponse asserts status and response code against a precomputed
// response.
func checkResponse(t *testing.T, rr *httptest.ResponseRecorder, want jsonResponse) {
	t.Helper()

	if rr.Code != want.status {
		t.Errorf("status = %d, want %d (body: %s)", rr.Code, want.status, rr.Body.String())
	}

	var gotBody, wantBody map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&gotBody); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if err := json.Unmarshal(want.body, &wantBody); err != nil {
		t.Fatalf("failed to decode want body: %v", err)
	}
	if gotBody["code"] != wantBody["code"] {
		t.Errorf("code = %q, want %q", gotBody["code"], wantBody["code"])
	}
}

// checkCode asserts status and response code for dynamic responses.
func checkCode(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantCode string) map[string]interface{} {
	t.Helper()

	if rr.Code != wantStatus {
		t.Errorf("status = %d, want %d (body: %s)", rr.Code, wantStatus, rr.Body.String())
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["code"] != wantCode {
		t.Errorf("code = %q, want %q", body["code"], wantCode)
	}
	return body
}
