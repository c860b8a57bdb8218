package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Point vértice de un polígono en grados decimales (WGS84).
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Lot lote de terreno con su polígono.
type Lot struct {
	ID          string
	Name        string
	Description string
	AreaM2      decimal.Decimal
	Status      string
	Coordinates []Point
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sublot subdivisión de un lote.
type Sublot struct {
	ID          string
	LotID       string
	Name        string
	Description string
	AreaM2      decimal.Decimal
	Coordinates []Point
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Estados de cultivo.
const (
	CropStatusActive    = "activo"
	CropStatusHarvested = "cosechado"
	CropStatusInactive  = "inactivo"
)

// Crop cultivo sembrado en un sublote.
type Crop struct {
	ID          string
	SublotID    string // vacío si no está asignado
	Name        string
	Variety     string
	SowingDate  time.Time
	HarvestDate *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
