package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"brokerage/internal/config"
	"brokerage/internal/http/handlers"
	"brokerage/internal/metrics"
	"brokerage/internal/repos"
)

type testEnv struct {
	app  *fiber.App
	deps *handlers.Deps
	db   *sqlx.DB
	csrf string
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:          ":memory:",
		JWTSecret:      "test-secret",
		SessionTTL:     time.Hour,
		MaxImageBytes:  64 << 10,
		BodyLimit:      4 << 20,
		WhatsAppDomain: "https://wa.me",
	}
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWith(t, testConfig())
}

func newEnvWith(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repos.SeedDemoUsers(context.Background(), db); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	deps, err := handlers.NewDeps(context.Background(), db, cfg, nil, metrics.New())
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	env := &testEnv{app: handlers.NewApp(deps), deps: deps, db: db}
	env.csrf = env.fetchCSRF(t)
	return env
}

// rebuild swaps in modified deps (for example a failing store).
func (e *testEnv) rebuild(t *testing.T) {
	t.Helper()
	e.app = handlers.NewApp(e.deps)
	e.csrf = e.fetchCSRF(t)
}

func (e *testEnv) fetchCSRF(t *testing.T) string {
	t.Helper()
	resp := e.do(t, httptest.NewRequest("GET", "/admin/login", nil))
	tok := cookieValue(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(t, req)
}

// postForm submits an urlencoded form with a valid CSRF pair.
func (e *testEnv) postForm(t *testing.T, target string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", e.csrf)
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: e.csrf})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(t, req)
}

func (e *testEnv) postJSON(t *testing.T, method, target string, body any, bearer string) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return e.do(t, req)
}

// login signs in through the form and returns the session cookie.
func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp := e.postForm(t, "/admin/login", url.Values{"email": {email}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login %s: want 303, got %d", email, resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("no session cookie after login")
	}
	return &http.Cookie{Name: "sid", Value: sid}
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

var cardID = regexp.MustCompile(`class="property-card" data-id="([^"]+)"`)

// cardIDs lists listing ids in the order the page shows them.
func cardIDs(body string) []string {
	var ids []string
	for _, m := range cardID.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// captureLogs collects the JSON lines written through the standard logger.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
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

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func newFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
