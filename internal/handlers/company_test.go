package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/viajes/internal/models"
	"github.com/example/viajes/internal/storage"
)

func sendLogo(t *testing.T, app *fiber.App, method, target string, fields map[string]string) map[string]interface{} {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	part, _ := w.CreateFormFile("logo", "logo.png")
	_, _ = part.Write([]byte("logo"))
	_ = w.Close()

	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode >= 300 {
		t.Fatalf("%s %s: unexpected status %d", method, target, resp.StatusCode)
	}

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return body
}

func TestCompanyLifecycle(t *testing.T) {
	db := newTestDB(t)
	store := storage.NewLocal(t.TempDir())
	app := newTestApp()
	NewCompanyHandler(db, store).RegisterCompanyRoutes(app.Group("/empresas"))

	resp, _ := doJSON(t, app, "POST", "/empresas", fiber.Map{"nombre": "LATAM"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing tipo: expected 400, got %d", resp.StatusCode)
	}

	body := sendLogo(t, app, "POST", "/empresas", map[string]string{"nombre": "LATAM", "tipo": "aerolinea"})
	created := dataMap(t, body)
	id := created["id"].(string)
	firstLogo := created["logo"].(string)
	if !strings.HasPrefix(firstLogo, "/uploads/empresas/") {
		t.Fatalf("unexpected logo path %q", firstLogo)
	}

	body = sendLogo(t, app, "PUT", "/empresas/"+id, map[string]string{"sitio_web": "https://latam.example"})
	updated := dataMap(t, body)
	if updated["logo"] == firstLogo || updated["sitio_web"] != "https://latam.example" || updated["nombre"] != "LATAM" {
		t.Fatalf("unexpected update result %v", updated)
	}

	if _, err := os.Stat(filepath.Join(store.Root, "empresas", filepath.Base(firstLogo))); !os.IsNotExist(err) {
		t.Fatalf("previous logo should be removed, stat err %v", err)
	}

	resp, _ = doJSON(t, app, "DELETE", "/empresas/"+id, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	var company models.Company
	if err := db.First(&company, "id = ?", id).Error; err != nil || company.Active {
		t.Fatalf("company should remain but inactive: %+v %v", company, err)
	}

	_, body = doJSON(t, app, "GET", "/empresas", nil)
	if len(dataList(t, body)) != 0 {
		t.Fatal("inactive company must not be listed by default")
	}
	_, body = doJSON(t, app, "GET", "/empresas?activo=0", nil)
	if len(dataList(t, body)) != 1 {
		t.Fatal("inactive filter should return the company")
	}
}

func TestUpdateCompanyKeepsLogoWhenRemovalFails(t *testing.T) {
	db := newTestDB(t)
	store := storage.NewLocal(t.TempDir())
	app := newTestApp()
	NewCompanyHandler(db, store).RegisterCompanyRoutes(app.Group("/empresas"))

	c := models.Company{Name: "Sky", Type: "aerolinea", Logo: "/uploads/empresas/missing.png", Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := sendLogo(t, app, "PUT", "/empresas/"+c.ID.String(), nil)
	if dataMap(t, body)["logo"] == "/uploads/empresas/missing.png" {
		t.Fatal("logo should be replaced even if the old file is gone")
	}
}

func TestFailedCompanyWriteRemovesUploadedLogo(t *testing.T) {
	db := newTestDB(t)
	store := storage.NewLocal(t.TempDir())
	app := newTestApp()
	NewCompanyHandler(db, store).RegisterCompanyRoutes(app.Group("/empresas"))

	c := models.Company{Name: "Sky", Type: "aerolinea", Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	failWrites(t, db)
	dir := filepath.Join(store.Root, "empresas")

	if status := sendImage(t, app, "POST", "/empresas", "logo", map[string]string{"nombre": "JetSMART", "tipo": "aerolinea"}); status != fiber.StatusInternalServerError {
		t.Fatalf("create: expected 500, got %d", status)
	}
	if status := sendImage(t, app, "PUT", "/empresas/"+c.ID.String(), "logo", nil); status != fiber.StatusInternalServerError {
		t.Fatalf("update: expected 500, got %d", status)
	}
	if n := storedFiles(t, dir); n != 0 {
		t.Fatalf("expected no leftover logos, found %d", n)
	}
}
