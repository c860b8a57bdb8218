package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// LotRequest alta o modificación de un lote. Las coordenadas van por su propio endpoint.
type LotRequest struct {
	Name        string `json:"nombre" validate:"required,max=120"`
	Description string `json:"descripcion" validate:"omitempty,max=500"`
	Status      string `json:"estado" validate:"omitempty,max=30"`
}

// CoordinatesRequest body de PUT /lotes/:id/coordenadas y /sublotes/:id/coordenadas.
type CoordinatesRequest struct {
	Coordinates []entity.Point `json:"coordenadas"`
}

// LotResponse lote con su polígono.
type LotResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"nombre"`
	Description string           `json:"descripcion"`
	AreaM2      decimal.Decimal  `json:"area_m2"`
	Status      string           `json:"estado"`
	Coordinates []entity.Point   `json:"coordenadas"`
	Sublots     []SublotResponse `json:"sublotes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// SublotRequest alta o modificación de un sublote.
type SublotRequest struct {
	LotID       string `json:"lote_id" validate:"required,uuid"`
	Name        string `json:"nombre" validate:"required,max=120"`
	Description string `json:"descripcion" validate:"omitempty,max=500"`
}

// SublotResponse sublote con su polígono.
type SublotResponse struct {
	ID          string          `json:"id"`
	LotID       string          `json:"lote_id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	AreaM2      decimal.Decimal `json:"area_m2"`
	Coordinates []entity.Point  `json:"coordenadas"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CropRequest alta o modificación de un cultivo. Fechas YYYY-MM-DD o RFC3339.
type CropRequest struct {
	SublotID    string `json:"sublote_id" validate:"omitempty,uuid"`
	Name        string `json:"nombre" validate:"required,max=120"`
	Variety     string `json:"variedad" validate:"omitempty,max=120"`
	SowingDate  string `json:"fecha_siembra" validate:"required"`
	HarvestDate string `json:"fecha_cosecha"`
	Status      string `json:"estado" validate:"omitempty,oneof=activo cosechado inactivo"`
}

// CropResponse salida de un cultivo.
type CropResponse struct {
	ID          string     `json:"id"`
	SublotID    string     `json:"sublote_id,omitempty"`
	Name        string     `json:"nombre"`
	Variety     string     `json:"variedad"`
	SowingDate  time.Time  `json:"fecha_siembra"`
	HarvestDate *time.Time `json:"fecha_cosecha,omitempty"`
	Status      string     `json:"estado"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FeatureCollection GeoJSON para la vista de mapa. Las posiciones van en orden [lng, lat].
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature elemento GeoJSON.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry polígono GeoJSON (un solo anillo exterior).
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}
