package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/viajes/internal/config"
	"github.com/example/viajes/internal/middleware"
	"github.com/example/viajes/internal/models"
	"github.com/example/viajes/internal/services"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       testSecret,
		TokenExpires:    7 * 24 * time.Hour,
		VerificationTTL: 10 * time.Minute,
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
}

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
	err   error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}}
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, _ string, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.codes[email] = code
	m.sent++
	return nil
}

func (m *fakeMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type fakeNotifier struct {
	signups chan services.SignupNotification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signups: make(chan services.SignupNotification, 8)}
}

func (n *fakeNotifier) NotifySignup(s services.SignupNotification) {
	n.signups <- s
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}, headers ...string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, raw, err)
		}
	}
	return resp, out
}

func dataList(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	list, ok := body["data"].([]interface{})
	if !ok {
		t.Fatalf("expected data list, got %v", body["data"])
	}
	return list
}

func dataMap(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	m, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body["data"])
	}
	return m
}
