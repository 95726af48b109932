// Package funnel models the booking funnel state a client keeps between
// screens (search, outbound, return, seats, checkout) and the gates that
// decide whether a screen may be entered.
package funnel

import (
	"encoding/json"
	"strings"
)

// SchemaVersion is bumped whenever Session changes shape. Snapshots with
// another version are discarded.
const SchemaVersion = 1

// Search holds the criteria typed on the search screen.
type Search struct {
	Origin        string `json:"origen"`
	Destination   string `json:"destino"`
	DepartureDate string `json:"fecha_ida"`
	ReturnDate    string `json:"fecha_regreso,omitempty"`
	RoundTrip     bool   `json:"ida_vuelta"`
	Class         string `json:"clase,omitempty"`
	Passengers    int    `json:"pasajeros,omitempty"`
}

func (s *Search) complete() bool {
	return s != nil &&
		strings.TrimSpace(s.Origin) != "" &&
		strings.TrimSpace(s.Destination) != "" &&
		strings.TrimSpace(s.DepartureDate) != ""
}

// Selection is a chosen trip together with one of its fares.
type Selection struct {
	TripID string  `json:"viaje_id"`
	FareID string  `json:"tarifa_id"`
	Price  float64 `json:"precio,omitempty"`
}

func (s *Selection) complete() bool {
	return s != nil && s.TripID != "" && s.FareID != ""
}

// Session is the typed snapshot of everything the funnel has collected.
type Session struct {
	Version       int        `json:"version"`
	Search        *Search    `json:"busqueda,omitempty"`
	Outbound      *Selection `json:"ida,omitempty"`
	Return        *Selection `json:"regreso,omitempty"`
	Seats         []string   `json:"asientos,omitempty"`
	CheckoutReady bool       `json:"checkout_listo"`
	Authenticated bool       `json:"autenticado"`
}

// NewSession returns an empty session at the current schema version.
func NewSession() Session {
	return Session{Version: SchemaVersion}
}

// Load decodes a stored snapshot. Malformed or outdated snapshots yield an
// empty session so every gate fails closed.
func Load(raw []byte) Session {
	if len(raw) == 0 {
		return NewSession()
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Version != SchemaVersion {
		return NewSession()
	}
	return s
}

// Normalize discards a session carrying an unknown schema version.
func (s Session) Normalize() Session {
	if s.Version != SchemaVersion {
		return NewSession()
	}
	return s
}

// RoundTrip reports whether a return leg is required.
func (s Session) RoundTrip() bool {
	return s.Search != nil && s.Search.RoundTrip
}

// SetSearch stores new criteria and drops every selection made for the
// previous search.
func (s *Session) SetSearch(search Search) {
	s.Search = &search
	s.Outbound = nil
	s.Return = nil
	s.Seats = nil
	s.CheckoutReady = false
}

// SelectOutbound stores the outbound choice and drops later steps.
func (s *Session) SelectOutbound(sel Selection) {
	s.Outbound = &sel
	s.Return = nil
	s.Seats = nil
	s.CheckoutReady = false
}

// SelectReturn stores the return choice and drops later steps.
func (s *Session) SelectReturn(sel Selection) {
	s.Return = &sel
	s.Seats = nil
	s.CheckoutReady = false
}

// ChooseSeats stores the seat choice and clears the checkout marker.
func (s *Session) ChooseSeats(seats []string) {
	s.Seats = append([]string(nil), seats...)
	s.CheckoutReady = false
}

// MarkCheckoutReady sets the checkout marker once the itinerary is complete
// and seats are chosen. It reports whether the marker was set.
func (s *Session) MarkCheckoutReady() bool {
	if !itineraryComplete(*s) || len(s.Seats) == 0 {
		return false
	}
	s.CheckoutReady = true
	return true
}

// Stage reports how far along the funnel the session is.
func (s Session) Stage() Stage {
	switch {
	case !s.Search.complete():
		return StageEmpty
	case !s.Outbound.complete():
		return StageSearched
	case s.RoundTrip() && !s.Return.complete():
		return StageOutboundSelected
	case len(s.Seats) == 0:
		if s.RoundTrip() {
			return StageReturnSelected
		}
		return StageOutboundSelected
	case !s.CheckoutReady:
		return StageSeatsChosen
	default:
		return StageCheckoutReady
	}
}

// Stage is a position in the linear funnel.
type Stage string

const (
	StageEmpty            Stage = "vacio"
	StageSearched         Stage = "busqueda"
	StageOutboundSelected Stage = "ida_seleccionada"
	StageReturnSelected   Stage = "regreso_seleccionado"
	StageSeatsChosen      Stage = "asientos_elegidos"
	StageCheckoutReady    Stage = "checkout_listo"
)

func itineraryComplete(s Session) bool {
	if !s.Outbound.complete() {
		return false
	}
	return !s.RoundTrip() || s.Return.complete()
}
