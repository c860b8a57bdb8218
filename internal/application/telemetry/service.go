// Package telemetry procesa las lecturas publicadas por los dispositivos IoT:
// las asigna a sensores, mantiene la ventana deslizante y dispara alertas por umbral.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/iot"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// AlertRaiser persiste y difunde una alerta.
type AlertRaiser interface {
	Raise(ctx context.Context, sensorID, kind, message string, value *float64) (*dto.AlertResponse, error)
}

// ReadingEvent payload del evento "lectura" del websocket.
type ReadingEvent struct {
	SensorID  string    `json:"sensor_id"`
	Name      string    `json:"nombre"`
	Type      string    `json:"tipo"`
	Unit      string    `json:"unidad"`
	Value     float64   `json:"valor"`
	Timestamp time.Time `json:"timestamp"`
}

// Service ingesta de lecturas. Las lecturas viven solo en memoria.
type Service struct {
	sensorRepo  repository.SensorRepository
	window      *iot.Window
	evaluator   *iot.Evaluator
	alerts      AlertRaiser
	broadcaster ports.Broadcaster
	log         *logger.Logger
	now         func() time.Time
}

// NewService construye el servicio. broadcaster puede ser nil.
func NewService(
	sensorRepo repository.SensorRepository,
	windowSize int,
	alerts AlertRaiser,
	broadcaster ports.Broadcaster,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		sensorRepo:  sensorRepo,
		window:      iot.NewWindow(windowSize),
		evaluator:   iot.NewEvaluator(),
		alerts:      alerts,
		broadcaster: broadcaster,
		log:         log.Component("telemetry"),
		now:         time.Now,
	}
}

// Ingest procesa un mensaje del broker. Devuelve la cantidad de lecturas registradas.
// Claves del payload sin sensor activo asociado se ignoran.
func (s *Service) Ingest(ctx context.Context, raw []byte) (int, error) {
	values, err := iot.ParsePayload(raw)
	if err != nil {
		return 0, err
	}
	sensors, err := s.sensorRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("telemetry: sensores activos: %w", err)
	}
	ts := s.now()
	count := 0
	for _, sn := range sensors {
		v, ok := values[sn.Field]
		if !ok {
			continue
		}
		s.record(ctx, sn, v, ts)
		count++
	}
	return count, nil
}

func (s *Service) record(ctx context.Context, sn *entity.Sensor, v float64, ts time.Time) {
	s.window.Add(entity.Reading{SensorID: sn.ID, Value: v, Timestamp: ts})
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(ports.EventReading, ReadingEvent{
			SensorID: sn.ID, Name: sn.Name, Type: sn.Type, Unit: sn.Unit, Value: v, Timestamp: ts,
		})
	}
	breach := s.evaluator.Evaluate(sn, v)
	if breach == nil || s.alerts == nil {
		return
	}
	value := v
	if _, err := s.alerts.Raise(ctx, sn.ID, breach.Type, breach.Message, &value); err != nil {
		s.log.Error().Err(err).Str("sensor_id", sn.ID).Msg("no se pudo registrar la alerta")
		return
	}
	s.log.Warn().Str("sensor_id", sn.ID).Str("tipo", breach.Type).Float64("valor", v).Msg(breach.Message)
}

// HandleMessage adaptador para el suscriptor MQTT: registra y descarta payloads inválidos.
func (s *Service) HandleMessage(ctx context.Context, topic string, payload []byte) {
	n, err := s.Ingest(ctx, payload)
	if err != nil {
		s.log.Warn().Err(err).Str("topic", topic).Msg("payload descartado")
		return
	}
	s.log.Debug().Str("topic", topic).Int("lecturas", n).Msg("mensaje procesado")
}

func (s *Service) WindowSize() int { return s.window.Size() }

func (s *Service) Readings(sensorID string) []entity.Reading { return s.window.Readings(sensorID) }

func (s *Service) Latest() map[string]entity.Reading { return s.window.Latest() }

func (s *Service) InAlarm(sensorID string) bool { return s.evaluator.InAlarm(sensorID) }

// Forget descarta ventana y estado de alarma del sensor.
func (s *Service) Forget(sensorID string) {
	s.window.Forget(sensorID)
	s.evaluator.Reset(sensorID)
}

func (s *Service) ResetAlarm(sensorID string) { s.evaluator.Reset(sensorID) }
