// Package seatmap lays out the cabin of a trip and marks which seats are
// taken. There is no seat inventory: occupancy is derived from remaining
// fare capacity and spread deterministically per trip.
package seatmap

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Seat is one position of the cabin.
type Seat struct {
	ID       string `json:"id"`
	Row      int    `json:"fila"`
	Column   string `json:"columna"`
	Occupied bool   `json:"ocupado"`
	Window   bool   `json:"ventana"`
	Aisle    bool   `json:"pasillo"`
}

// Map is the full cabin layout of a trip.
type Map struct {
	TripID    string   `json:"viaje_id"`
	Columns   []string `json:"columnas"`
	Rows      int      `json:"filas"`
	Capacity  int      `json:"capacidad"`
	Available int      `json:"disponibles"`
	Seats     []Seat   `json:"asientos"`
}

var (
	aircraftColumns = []string{"A", "B", "C", "D", "E", "F"}
	busColumns      = []string{"A", "B", "C", "D"}
)

// Build lays out capacity seats and marks capacity-available of them as
// occupied. The same inputs always produce the same map.
func Build(tripID string, capacity, available int, bus bool) Map {
	columns := aircraftColumns
	if bus {
		columns = busColumns
	}
	if capacity < 0 {
		capacity = 0
	}
	if available < 0 {
		available = 0
	}
	if available > capacity {
		available = capacity
	}

	rows := (capacity + len(columns) - 1) / len(columns)
	seats := make([]Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i/len(columns) + 1
		col := i % len(columns)
		seats = append(seats, Seat{
			ID:     fmt.Sprintf("%d%s", row, columns[col]),
			Row:    row,
			Column: columns[col],
			Window: col == 0 || col == len(columns)-1,
			Aisle:  col == len(columns)/2-1 || col == len(columns)/2,
		})
	}

	order := make([]int, len(seats))
	weights := make([]uint32, len(seats))
	for i := range seats {
		order[i] = i
		weights[i] = weight(tripID, seats[i].ID)
	}
	sort.SliceStable(order, func(a, b int) bool { return weights[order[a]] < weights[order[b]] })

	for _, idx := range order[:capacity-available] {
		seats[idx].Occupied = true
	}

	return Map{
		TripID:    tripID,
		Columns:   columns,
		Rows:      rows,
		Capacity:  capacity,
		Available: available,
		Seats:     seats,
	}
}

func weight(tripID, seatID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(tripID))
	h.Write([]byte{0})
	h.Write([]byte(seatID))
	return h.Sum32()
}
