package iot

import (
	"fmt"
	"sync"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// Breach resultado de evaluar una lectura contra los umbrales del sensor.
type Breach struct {
	Type    string
	Message string
}

// Evaluator detecta cruces de umbral por flanco: un sensor en alarma no vuelve a
// disparar hasta que una lectura regrese dentro del rango.
type Evaluator struct {
	mu      sync.Mutex
	alarmed map[string]string
}

func NewEvaluator() *Evaluator {
	return &Evaluator{alarmed: make(map[string]string)}
}

// Evaluate devuelve el Breach a notificar o nil si no corresponde alerta nueva.
func (e *Evaluator) Evaluate(s *entity.Sensor, value float64) *Breach {
	kind := classify(s, value)

	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.alarmed[s.ID]
	if kind == "" {
		delete(e.alarmed, s.ID)
		return nil
	}
	if prev == kind {
		return nil
	}
	e.alarmed[s.ID] = kind
	return &Breach{Type: kind, Message: message(s, kind, value)}
}

// InAlarm informa si el sensor tiene una alarma activa.
func (e *Evaluator) InAlarm(sensorID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.alarmed[sensorID]
	return ok
}

// Reset olvida el estado de alarma de un sensor.
func (e *Evaluator) Reset(sensorID string) {
	e.mu.Lock()
	delete(e.alarmed, sensorID)
	e.mu.Unlock()
}

func classify(s *entity.Sensor, v float64) string {
	switch {
	case s.MaxValue != nil && v > *s.MaxValue:
		return entity.AlertAboveMax
	case s.MinValue != nil && v < *s.MinValue:
		return entity.AlertBelowMin
	}
	return ""
}

func message(s *entity.Sensor, kind string, v float64) string {
	if kind == entity.AlertAboveMax {
		return fmt.Sprintf("%s: valor %.2f%s supera el máximo %.2f", s.Name, v, unitSuffix(s), *s.MaxValue)
	}
	return fmt.Sprintf("%s: valor %.2f%s por debajo del mínimo %.2f", s.Name, v, unitSuffix(s), *s.MinValue)
}

func unitSuffix(s *entity.Sensor) string {
	if s.Unit == "" {
		return ""
	}
	return " " + s.Unit
}
