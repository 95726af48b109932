package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BusHandler serves bus search. Results are sample data; there is no bus
// inventory behind it.
type BusHandler struct{}

func NewBusHandler() *BusHandler {
	return &BusHandler{}
}

type busSearchRequest struct {
	Origin      string `json:"origen"`
	Destination string `json:"destino"`
	Date        string `json:"fecha"`
	Passengers  int    `json:"pasajeros"`
}

// BusOption is one sample departure.
type BusOption struct {
	ID          string  `json:"id"`
	Company     string  `json:"empresa"`
	Origin      string  `json:"origen"`
	Destination string  `json:"destino"`
	Date        string  `json:"fecha"`
	Departure   string  `json:"hora_salida"`
	Arrival     string  `json:"hora_llegada"`
	Duration    string  `json:"duracion"`
	Service     string  `json:"servicio"`
	Price       float64 `json:"precio"`
	Seats       int     `json:"asientos_disponibles"`
}

var busSamples = []BusOption{
	{ID: "bus-1", Company: "Turbus", Departure: "07:30", Arrival: "13:45", Duration: "6h 15m", Service: "Semi cama", Price: 14990, Seats: 18},
	{ID: "bus-2", Company: "Pullman Bus", Departure: "10:00", Arrival: "16:10", Duration: "6h 10m", Service: "Salón cama", Price: 21990, Seats: 7},
	{ID: "bus-3", Company: "Condor Bus", Departure: "15:20", Arrival: "21:40", Duration: "6h 20m", Service: "Clásico", Price: 11990, Seats: 26},
	{ID: "bus-4", Company: "Eme Bus", Departure: "23:15", Arrival: "05:30", Duration: "6h 15m", Service: "Premium", Price: 27990, Seats: 4},
}

// Search echoes the request into every sample departure.
func (h *BusHandler) Search(c *fiber.Ctx) error {
	var req busSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Origin == "" || req.Destination == "" || req.Date == "" {
		return fiber.NewError(fiber.StatusBadRequest, "origen, destino and fecha are required")
	}

	passengers := req.Passengers
	if passengers <= 0 {
		passengers = 1
	}

	results := make([]BusOption, 0, len(busSamples))
	for _, sample := range busSamples {
		if sample.Seats < passengers {
			continue
		}
		sample.Origin = req.Origin
		sample.Destination = req.Destination
		sample.Date = req.Date
		results = append(results, sample)
	}

	return c.JSON(fiber.Map{"success": true, "data": results, "total": len(results)})
}
