package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/viajes/internal/models"
	"github.com/example/viajes/internal/seatmap"
)

const dateLayout = "2006-01-02"

// FlightHandler serves trip search, fares and trip detail.
type FlightHandler struct {
	db *gorm.DB
}

// NewFlightHandler constructs FlightHandler.
func NewFlightHandler(db *gorm.DB) *FlightHandler {
	return &FlightHandler{db: db}
}

// SearchResult is one trip matching a search, aggregated over its fares.
type SearchResult struct {
	TripID          uuid.UUID `gorm:"column:id_viaje" json:"id_viaje"`
	DepartureAt     time.Time `gorm:"column:fecha_salida" json:"fecha_salida"`
	ArrivalAt       time.Time `gorm:"column:fecha_llegada" json:"fecha_llegada"`
	Status          string    `gorm:"column:estado" json:"estado"`
	OriginCode      string    `gorm:"column:origen_codigo" json:"origen_codigo"`
	OriginName      string    `gorm:"column:origen_nombre" json:"origen_nombre"`
	OriginCity      string    `gorm:"column:origen_ciudad" json:"origen_ciudad"`
	DestinationCode string    `gorm:"column:destino_codigo" json:"destino_codigo"`
	DestinationName string    `gorm:"column:destino_nombre" json:"destino_nombre"`
	DestinationCity string    `gorm:"column:destino_ciudad" json:"destino_ciudad"`
	CompanyName     string    `gorm:"column:empresa" json:"empresa"`
	CompanyLogo     string    `gorm:"column:empresa_logo" json:"empresa_logo"`
	EquipmentModel  string    `gorm:"column:equipo" json:"equipo"`
	MinPrice        float64   `gorm:"column:precio_minimo" json:"precio_minimo"`
	FareCount       int64     `gorm:"column:tarifas_disponibles" json:"tarifas_disponibles"`
	SeatsAvailable  int64     `gorm:"column:cupos_totales" json:"cupos_totales"`
}

// SearchTrips implements GET /vuelos/buscar?origen&destino&fecha&clase.
func (h *FlightHandler) SearchTrips(c *fiber.Ctx) error {
	origin := strings.TrimSpace(c.Query("origen"))
	destination := strings.TrimSpace(c.Query("destino"))
	date := strings.TrimSpace(c.Query("fecha"))
	class := strings.ToLower(strings.TrimSpace(c.Query("clase")))

	if origin == "" || destination == "" || date == "" {
		return fiber.NewError(fiber.StatusBadRequest, "origen, destino and fecha are required")
	}

	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "fecha must be YYYY-MM-DD")
	}

	originCode, err := h.resolveTerminalCode(origin)
	if err != nil {
		return err
	}
	destinationCode, err := h.resolveTerminalCode(destination)
	if err != nil {
		return err
	}

	results := []SearchResult{}
	if originCode == "" || destinationCode == "" {
		return c.JSON(fiber.Map{"success": true, "data": results})
	}

	query := h.db.Table("viajes AS v").
		Select(`v.id AS id_viaje, v.fecha_salida, v.fecha_llegada, v.estado,
			o.codigo AS origen_codigo, o.nombre AS origen_nombre, o.ciudad AS origen_ciudad,
			d.codigo AS destino_codigo, d.nombre AS destino_nombre, d.ciudad AS destino_ciudad,
			e.nombre AS empresa, e.logo AS empresa_logo, eq.modelo AS equipo,
			MIN(vt.precio) AS precio_minimo, COUNT(vt.id) AS tarifas_disponibles, SUM(vt.cupos) AS cupos_totales`).
		Joins("JOIN rutas r ON r.id = v.ruta_id").
		Joins("JOIN terminales o ON o.id = r.origen_id").
		Joins("JOIN terminales d ON d.id = r.destino_id").
		Joins("JOIN equipos eq ON eq.id = v.equipo_id").
		Joins("JOIN empresas e ON e.id = eq.empresa_id").
		Joins("JOIN viaje_tarifas vt ON vt.viaje_id = v.id AND vt.activo = ? AND vt.cupos > 0", true).
		Joins("JOIN tarifas t ON t.id = vt.tarifa_id").
		Joins("JOIN clases_cabina cc ON cc.id = t.clase_id").
		Where("v.estado = ?", models.TripScheduled).
		Where("o.codigo = ? AND d.codigo = ?", originCode, destinationCode).
		Where("v.fecha_salida >= ? AND v.fecha_salida < ?", day, day.AddDate(0, 0, 1))

	if class != "" {
		query = query.Where("cc.codigo = ?", class)
	}

	if err := query.
		Group("v.id, v.fecha_salida, v.fecha_llegada, v.estado, o.codigo, o.nombre, o.ciudad, d.codigo, d.nombre, d.ciudad, e.nombre, e.logo, eq.modelo").
		Order("precio_minimo ASC").Order("v.fecha_salida ASC").
		Scan(&results).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    results,
		"busqueda": fiber.Map{
			"origen":  originCode,
			"destino": destinationCode,
			"fecha":   date,
			"clase":   class,
		},
	})
}

// TripFareRow is a trip fare joined to its fare definition and cabin class.
type TripFareRow struct {
	TripFareID uuid.UUID `gorm:"column:id_viaje_tarifa" json:"id_viaje_tarifa"`
	TripID     uuid.UUID `gorm:"column:viaje_id" json:"viaje_id"`
	FareID     uuid.UUID `gorm:"column:id_tarifa" json:"id_tarifa"`
	FareName   string    `gorm:"column:tarifa" json:"tarifa"`
	Price      float64   `gorm:"column:precio" json:"precio"`
	Currency   string    `gorm:"column:moneda" json:"moneda"`
	Seats      int       `gorm:"column:cupos" json:"cupos"`
	Active     bool      `gorm:"column:activo" json:"activo"`
	BaggageKg  int       `gorm:"column:equipaje_kg" json:"equipaje_kg"`
	CarryOn    bool      `gorm:"column:equipaje_mano" json:"equipaje_mano"`
	Refundable bool      `gorm:"column:reembolsable" json:"reembolsable"`
	Changeable bool      `gorm:"column:cambios" json:"cambios"`
	ClassCode  string    `gorm:"column:clase_codigo" json:"clase_codigo"`
	ClassName  string    `gorm:"column:clase" json:"clase"`
}

func (h *FlightHandler) fareRows(tripID uuid.UUID) *gorm.DB {
	return h.db.Table("viaje_tarifas AS vt").
		Select(`vt.id AS id_viaje_tarifa, vt.viaje_id, vt.precio, vt.moneda, vt.cupos, vt.activo,
			t.id AS id_tarifa, t.nombre AS tarifa, t.equipaje_kg, t.equipaje_mano, t.reembolsable, t.cambios,
			cc.codigo AS clase_codigo, cc.nombre AS clase`).
		Joins("JOIN tarifas t ON t.id = vt.tarifa_id").
		Joins("JOIN clases_cabina cc ON cc.id = t.clase_id").
		Where("vt.viaje_id = ?", tripID)
}

// TripFares lists every fare of a trip in fare creation order. A trip
// without fares yields an empty list.
func (h *FlightHandler) TripFares(c *fiber.Ctx) error {
	tripID, err := uuid.Parse(c.Params("idViaje"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid trip id")
	}

	rows := []TripFareRow{}
	if err := h.fareRows(tripID).Order("t.created_at ASC").Order("t.id ASC").
		Scan(&rows).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": rows})
}

// TripDetail returns one trip with its route, carrier and active fares
// ordered by price.
func (h *FlightHandler) TripDetail(c *fiber.Ctx) error {
	trip, err := h.loadTrip(c)
	if err != nil {
		return err
	}

	fares := []TripFareRow{}
	if err := h.fareRows(trip.ID).Where("vt.activo = ?", true).
		Order("vt.precio ASC").Scan(&fares).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"viaje":   trip,
			"tarifas": fares,
		},
	})
}

// SeatMap returns the cabin layout of a trip.
func (h *FlightHandler) SeatMap(c *fiber.Ctx) error {
	trip, err := h.loadTrip(c)
	if err != nil {
		return err
	}

	var available int64
	if err := h.db.Model(&models.TripFare{}).
		Where("viaje_id = ? AND activo = ?", trip.ID, true).
		Select("COALESCE(SUM(cupos), 0)").Scan(&available).Error; err != nil {
		return err
	}

	capacity := 0
	if trip.Equipment != nil {
		capacity = trip.Equipment.Capacity
	}
	bus := trip.Route != nil && trip.Route.Origin != nil && trip.Route.Origin.Kind == "bus"

	return c.JSON(fiber.Map{
		"success": true,
		"data":    seatmap.Build(trip.ID.String(), capacity, int(available), bus),
	})
}

// TerminalSummary is a destination reachable by at least one scheduled trip.
type TerminalSummary struct {
	Code    string `gorm:"column:codigo" json:"codigo"`
	Name    string `gorm:"column:nombre" json:"nombre"`
	City    string `gorm:"column:ciudad" json:"ciudad"`
	Country string `gorm:"column:pais" json:"pais"`
}

// ListDestinations implements GET /vuelos/destinos.
func (h *FlightHandler) ListDestinations(c *fiber.Ctx) error {
	items := []TerminalSummary{}
	if err := h.db.Table("terminales AS d").
		Select("DISTINCT d.codigo, d.nombre, d.ciudad, d.pais").
		Joins("JOIN rutas r ON r.destino_id = d.id").
		Joins("JOIN viajes v ON v.ruta_id = r.id").
		Where("v.estado = ?", models.TripScheduled).
		Order("d.ciudad ASC").Order("d.codigo ASC").
		Scan(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

// CityCode implements GET /vuelos/destinos/:ciudad/codigo.
func (h *FlightHandler) CityCode(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Params("ciudad"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ciudad is required")
	}

	terminal, err := h.findByCity(city)
	if err != nil {
		return err
	}
	if terminal == nil {
		return fiber.NewError(fiber.StatusNotFound, "no terminal found for city")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": TerminalSummary{
			Code:    terminal.Code,
			Name:    terminal.Name,
			City:    terminal.City,
			Country: terminal.Country,
		},
	})
}

// resolveTerminalCode turns user input into a terminal code. Inputs of at
// most three characters are taken as codes; when no terminal has that code
// the input is retried as a city so short city names still resolve.
// Returns "" when nothing matches.
func (h *FlightHandler) resolveTerminalCode(input string) (string, error) {
	if len(input) <= 3 {
		code := strings.ToUpper(input)
		var count int64
		if err := h.db.Model(&models.Terminal{}).Where("codigo = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			return code, nil
		}
	}

	terminal, err := h.findByCity(input)
	if err != nil || terminal == nil {
		return "", err
	}
	return terminal.Code, nil
}

// findByCity does a case-insensitive substring match on city and terminal
// name and returns the first match by code.
func (h *FlightHandler) findByCity(city string) (*models.Terminal, error) {
	pattern := "%" + strings.ToLower(city) + "%"

	var terminal models.Terminal
	err := h.db.Where("LOWER(ciudad) LIKE ? OR LOWER(nombre) LIKE ?", pattern, pattern).
		Order("codigo ASC").First(&terminal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (h *FlightHandler) loadTrip(c *fiber.Ctx) (models.Trip, error) {
	var trip models.Trip
	id, err := uuid.Parse(c.Params("idViaje"))
	if err != nil {
		return trip, fiber.NewError(fiber.StatusBadRequest, "invalid trip id")
	}

	if err := h.db.Preload("Route.Origin").
		Preload("Route.Destination").
		Preload("Equipment.Company").
		First(&trip, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return trip, fiber.NewError(fiber.StatusNotFound, "trip not found")
		}
		return trip, err
	}
	return trip, nil
}

// RegisterFlightRoutes attaches flight routes. Literal paths go before
// /:idViaje so they are not captured by it.
func (h *FlightHandler) RegisterFlightRoutes(router fiber.Router) {
	router.Get("/buscar", h.SearchTrips)
	router.Get("/destinos", h.ListDestinations)
	router.Get("/destinos/:ciudad/codigo", h.CityCode)
	router.Get("/viajes/:idViaje/tarifas", h.TripFares)
	router.Get("/:idViaje/asientos", h.SeatMap)
	router.Get("/:idViaje", h.TripDetail)
}
