package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"chidi/internal/config"
	"chidi/internal/http/handlers"
	"chidi/internal/repos"
	"chidi/internal/services"
)

const (
	ownerEmail    = "owner@chidi.test"
	ownerPassword = "Passw0rd!"
	webhookSecret = "whsec_dGVzdC13ZWJob29rLXNlY3JldA=="
)

type testApp struct {
	*fiber.App
	DB   *sqlx.DB
	Shop *services.ShopService
	Auth *services.AuthService
}

// newTestApp wires the real routes over an in-memory demo shop.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", JWTSecret: "test-secret", JWTExpiry: time.Hour, WebhookSecret: webhookSecret}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	shop, err := services.NewShopService(context.Background(), db, nil)
	require.NoError(t, err)
	authSvc := services.NewAuthService(repos.NewUserRepo(db), cfg.JWTSecret, cfg.JWTExpiry, nil)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})
	app.Use(requestid.New())
	handlers.Routes(app, handlers.NewDeps(shop, authSvc, cfg))
	return &testApp{App: app, DB: db, Shop: shop, Auth: authSvc}
}

// call sends body as JSON with an optional bearer token.
func (a *testApp) call(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	resp := a.call(t, "POST", "/api/auth/login", "", map[string]string{"email": ownerEmail, "password": ownerPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	w := &lockedWriter{}
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(w)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	w.mu.Lock()
	defer w.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(w.buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
