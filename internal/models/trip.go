package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip statuses.
const (
	TripScheduled = "programado"
	TripCancelled = "cancelado"
	TripCompleted = "completado"
)

// Terminal is an airport or bus terminal identified by a short code.
type Terminal struct {
	BaseModel
	Code    string `gorm:"column:codigo;size:3;uniqueIndex" json:"codigo"`
	Name    string `gorm:"column:nombre" json:"nombre"`
	City    string `gorm:"column:ciudad" json:"ciudad"`
	Country string `gorm:"column:pais" json:"pais"`
	Kind    string `gorm:"column:tipo;default:aeropuerto" json:"tipo"`
}

func (Terminal) TableName() string { return "terminales" }

type Route struct {
	BaseModel
	OriginID        uuid.UUID `gorm:"column:origen_id;type:char(36);index" json:"origen_id"`
	Origin          *Terminal `gorm:"foreignKey:OriginID" json:"origen,omitempty"`
	DestinationID   uuid.UUID `gorm:"column:destino_id;type:char(36);index" json:"destino_id"`
	Destination     *Terminal `gorm:"foreignKey:DestinationID" json:"destino,omitempty"`
	DistanceKm      int       `gorm:"column:distancia_km" json:"distancia_km"`
	DurationMinutes int       `gorm:"column:duracion_min" json:"duracion_min"`
}

func (Route) TableName() string { return "rutas" }

// Equipment is an aircraft or bus operated by a company.
type Equipment struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"column:empresa_id;type:char(36);index" json:"empresa_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"empresa,omitempty"`
	Model     string    `gorm:"column:modelo" json:"modelo"`
	Capacity  int       `gorm:"column:capacidad" json:"capacidad"`
}

func (Equipment) TableName() string { return "equipos" }

type Trip struct {
	BaseModel
	RouteID     uuid.UUID  `gorm:"column:ruta_id;type:char(36);index" json:"ruta_id"`
	Route       *Route     `gorm:"foreignKey:RouteID" json:"ruta,omitempty"`
	EquipmentID uuid.UUID  `gorm:"column:equipo_id;type:char(36);index" json:"equipo_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentID" json:"equipo,omitempty"`
	DepartureAt time.Time  `gorm:"column:fecha_salida;index" json:"fecha_salida"`
	ArrivalAt   time.Time  `gorm:"column:fecha_llegada" json:"fecha_llegada"`
	Status      string     `gorm:"column:estado;default:programado" json:"estado"`
}

func (Trip) TableName() string { return "viajes" }

type CabinClass struct {
	BaseModel
	Code string `gorm:"column:codigo;size:32;uniqueIndex" json:"codigo"`
	Name string `gorm:"column:nombre" json:"nombre"`
}

func (CabinClass) TableName() string { return "clases_cabina" }

// Fare describes the conditions of a fare family, independent of any trip.
type Fare struct {
	BaseModel
	Name         string      `gorm:"column:nombre" json:"nombre"`
	CabinClassID uuid.UUID   `gorm:"column:clase_id;type:char(36);index" json:"clase_id"`
	CabinClass   *CabinClass `gorm:"foreignKey:CabinClassID" json:"clase,omitempty"`
	BaggageKg    int         `gorm:"column:equipaje_kg" json:"equipaje_kg"`
	CarryOn      bool        `gorm:"column:equipaje_mano" json:"equipaje_mano"`
	Refundable   bool        `gorm:"column:reembolsable" json:"reembolsable"`
	Changeable   bool        `gorm:"column:cambios" json:"cambios"`
}

func (Fare) TableName() string { return "tarifas" }

// TripFare is a priced, capacity-limited offering of one fare on one trip.
type TripFare struct {
	BaseModel
	TripID         uuid.UUID `gorm:"column:viaje_id;type:char(36);index" json:"viaje_id"`
	FareID         uuid.UUID `gorm:"column:tarifa_id;type:char(36);index" json:"tarifa_id"`
	Fare           *Fare     `gorm:"foreignKey:FareID" json:"tarifa,omitempty"`
	Price          float64   `gorm:"column:precio" json:"precio"`
	Currency       string    `gorm:"column:moneda;default:USD" json:"moneda"`
	SeatsAvailable int       `gorm:"column:cupos;check:cupos >= 0" json:"cupos"`
	Active         bool      `gorm:"column:activo;default:true" json:"activo"`
}

func (TripFare) TableName() string { return "viaje_tarifas" }
