package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestBusSearch(t *testing.T) {
	app := newTestApp()
	app.Post("/buses/search", NewBusHandler().Search)

	resp, body := doJSON(t, app, "POST", "/buses/search", fiber.Map{
		"origen":  "Santiago",
		"destino": "Valparaíso",
		"fecha":   "2025-11-03",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, body)
	}
	items := dataList(t, body)
	if len(items) != len(busSamples) {
		t.Fatalf("expected every sample, got %d", len(items))
	}
	for _, it := range items {
		bus := it.(map[string]interface{})
		if bus["origen"] != "Santiago" || bus["destino"] != "Valparaíso" || bus["fecha"] != "2025-11-03" {
			t.Fatalf("request not echoed: %v", bus)
		}
	}

	_, body = doJSON(t, app, "POST", "/buses/search", fiber.Map{
		"origen":    "Santiago",
		"destino":   "Valparaíso",
		"fecha":     "2025-11-03",
		"pasajeros": 10,
	})
	for _, it := range dataList(t, body) {
		if it.(map[string]interface{})["asientos_disponibles"].(float64) < 10 {
			t.Fatalf("departure without room for 10 returned: %v", it)
		}
	}
	if body["total"].(float64) != 2 {
		t.Fatalf("expected 2 departures with 10 seats, got %v", body["total"])
	}

	resp, _ = doJSON(t, app, "POST", "/buses/search", fiber.Map{"origen": "Santiago", "fecha": "2025-11-03"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing destino: expected 400, got %d", resp.StatusCode)
	}
}
