package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"

	"brokerage/internal/domain"
	applog "brokerage/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	t.Cleanup(func() { stdlog.SetOutput(os.Stderr); stdlog.SetFlags(stdlog.LstdFlags) })
	return &buf
}

func TestWithoutRequest(t *testing.T) {
	buf := capture(t)
	applog.Error(nil, "seed.fail", errors.New("disk full"), map[string]any{"n": 6})

	var got map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if got["level"] != "error" || got["action"] != "seed.fail" || got["err"] != "disk full" {
		t.Fatalf("unexpected entry: %v", got)
	}
	if _, ok := got["path"]; ok {
		t.Fatalf("no request fields expected: %v", got)
	}
}

func TestRequestFields(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals(applog.UserKey, &domain.User{ID: "u-admin"})
		applog.Audit(c, "property.create", nil)
		return c.SendStatus(201)
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/x", nil)); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if got["req_id"] != "rid-1" || got["user_id"] != "u-admin" || got["path"] != "/x" {
		t.Fatalf("unexpected entry: %v", got)
	}
}
