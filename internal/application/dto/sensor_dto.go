package dto

import (
	"time"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// SensorRequest alta o modificación de un sensor.
type SensorRequest struct {
	Name     string   `json:"nombre" validate:"required,max=120"`
	Type     string   `json:"tipo" validate:"required,max=40"`
	Unit     string   `json:"unidad" validate:"omitempty,max=20"`
	Field    string   `json:"campo" validate:"required,max=60"`
	MinValue *float64 `json:"umbral_min"`
	MaxValue *float64 `json:"umbral_max"`
	LotID    string   `json:"lote_id" validate:"omitempty,uuid"`
	Active   *bool    `json:"activo"`
}

// SensorResponse salida de un sensor, con su última lectura si la hay.
type SensorResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"nombre"`
	Type        string          `json:"tipo"`
	Unit        string          `json:"unidad"`
	Field       string          `json:"campo"`
	MinValue    *float64        `json:"umbral_min"`
	MaxValue    *float64        `json:"umbral_max"`
	LotID       string          `json:"lote_id,omitempty"`
	Active      bool            `json:"activo"`
	LastReading *entity.Reading `json:"ultima_lectura,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ReadingsResponse ventana actual de un sensor.
type ReadingsResponse struct {
	SensorID   string           `json:"sensor_id"`
	WindowSize int              `json:"ventana"`
	Readings   []entity.Reading `json:"lecturas"`
}

// RealtimeSensorDTO estado en vivo de un sensor para el tablero.
type RealtimeSensorDTO struct {
	SensorID string          `json:"sensor_id"`
	Name     string          `json:"nombre"`
	Type     string          `json:"tipo"`
	Unit     string          `json:"unidad"`
	Last     *entity.Reading `json:"ultima_lectura"`
	InAlarm  bool            `json:"en_alarma"`
}

// AlertQuery filtros de GET /alertas.
type AlertQuery struct {
	Unread bool `query:"no_leidas"`
	PageRequest
}

// AlertResponse salida de una alerta.
type AlertResponse struct {
	ID        string    `json:"id"`
	SensorID  string    `json:"sensor_id,omitempty"`
	Type      string    `json:"tipo"`
	Message   string    `json:"mensaje"`
	Value     *float64  `json:"valor,omitempty"`
	Read      bool      `json:"leida"`
	CreatedAt time.Time `json:"created_at"`
}
