package entity

import "time"

// Tipos de sensor conocidos por el tablero IoT.
const (
	SensorTemperature = "temperatura"
	SensorHumidity    = "humedad"
	SensorPump        = "bomba"
)

// Sensor dispositivo cuyas lecturas llegan por el broker MQTT.
// Field es la clave del JSON publicado por el dispositivo que alimenta este sensor.
type Sensor struct {
	ID        string
	Name      string
	Type      string
	Unit      string
	Field     string
	MinValue  *float64
	MaxValue  *float64
	LotID     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reading lectura puntual de un sensor (no se persiste).
type Reading struct {
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"valor"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert alerta generada por umbrales de sensores o stock bajo.
type Alert struct {
	ID        string
	SensorID  string
	Type      string
	Message   string
	Value     *float64
	Read      bool
	CreatedAt time.Time
}

// Tipos de alerta.
const (
	AlertAboveMax = "umbral_maximo"
	AlertBelowMin = "umbral_minimo"
	AlertLowStock = "stock_bajo"
)
