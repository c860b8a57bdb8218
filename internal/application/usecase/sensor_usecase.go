package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// ReadingSource lecturas en memoria de los sensores (ventana deslizante y estado de alarma).
type ReadingSource interface {
	WindowSize() int
	Readings(sensorID string) []entity.Reading
	Latest() map[string]entity.Reading
	InAlarm(sensorID string) bool
	// Forget descarta ventana y estado de alarma; ResetAlarm solo el estado de alarma.
	Forget(sensorID string)
	ResetAlarm(sensorID string)
}

// SensorUseCase CRUD de sensores y consulta de lecturas en vivo.
type SensorUseCase struct {
	repo     repository.SensorRepository
	lotRepo  repository.LotRepository
	readings ReadingSource
}

// NewSensorUseCase construye el caso de uso.
func NewSensorUseCase(repo repository.SensorRepository, lotRepo repository.LotRepository, readings ReadingSource) *SensorUseCase {
	return &SensorUseCase{repo: repo, lotRepo: lotRepo, readings: readings}
}

// Create registra un sensor (activo por defecto).
func (uc *SensorUseCase) Create(ctx context.Context, in dto.SensorRequest) (*dto.SensorResponse, error) {
	s := &entity.Sensor{ID: uuid.New().String(), Active: true}
	if err := uc.apply(ctx, s, in); err != nil {
		return nil, err
	}
	s.CreatedAt = s.UpdatedAt
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return uc.toResponse(s), nil
}

// GetByID sensor con su última lectura.
func (uc *SensorUseCase) GetByID(ctx context.Context, id string) (*dto.SensorResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(s), nil
}

// List todos los sensores.
func (uc *SensorUseCase) List(ctx context.Context) ([]dto.SensorResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SensorResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *uc.toResponse(s))
	}
	return out, nil
}

// Update reemplaza la configuración. Un cambio de umbrales reinicia el estado de alarma.
func (uc *SensorUseCase) Update(ctx context.Context, id string, in dto.SensorRequest) (*dto.SensorResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, s, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	if uc.readings != nil {
		uc.readings.ResetAlarm(id)
	}
	return uc.toResponse(s), nil
}

// Delete elimina el sensor y descarta sus lecturas en memoria.
func (uc *SensorUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if uc.readings != nil {
		uc.readings.Forget(id)
	}
	return nil
}

// Readings ventana actual del sensor.
func (uc *SensorUseCase) Readings(ctx context.Context, id string) (*dto.ReadingsResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	out := &dto.ReadingsResponse{SensorID: id, Readings: []entity.Reading{}}
	if uc.readings != nil {
		out.WindowSize = uc.readings.WindowSize()
		out.Readings = uc.readings.Readings(id)
	}
	return out, nil
}

// Realtime último valor de cada sensor activo.
func (uc *SensorUseCase) Realtime(ctx context.Context) ([]dto.RealtimeSensorDTO, error) {
	list, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var latest map[string]entity.Reading
	if uc.readings != nil {
		latest = uc.readings.Latest()
	}
	out := make([]dto.RealtimeSensorDTO, 0, len(list))
	for _, s := range list {
		item := dto.RealtimeSensorDTO{SensorID: s.ID, Name: s.Name, Type: s.Type, Unit: s.Unit}
		if r, ok := latest[s.ID]; ok {
			r := r
			item.Last = &r
			item.InAlarm = uc.readings.InAlarm(s.ID)
		}
		out = append(out, item)
	}
	return out, nil
}

func (uc *SensorUseCase) apply(ctx context.Context, s *entity.Sensor, in dto.SensorRequest) error {
	if in.MinValue != nil && in.MaxValue != nil && *in.MinValue > *in.MaxValue {
		return fmt.Errorf("%w: umbral_min mayor que umbral_max", domain.ErrInvalidInput)
	}
	field := strings.ToLower(strings.TrimSpace(in.Field))
	if field == "" {
		return fmt.Errorf("%w: campo es obligatorio", domain.ErrInvalidInput)
	}
	if in.LotID != "" && uc.lotRepo != nil {
		lot, err := uc.lotRepo.GetByID(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote", domain.ErrNotFound)
		}
	}
	s.Name = strings.TrimSpace(in.Name)
	s.Type = strings.ToLower(strings.TrimSpace(in.Type))
	s.Unit = in.Unit
	s.Field = field
	s.MinValue = in.MinValue
	s.MaxValue = in.MaxValue
	s.LotID = in.LotID
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (uc *SensorUseCase) get(ctx context.Context, id string) (*entity.Sensor, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sensor", domain.ErrNotFound)
	}
	return s, nil
}

func (uc *SensorUseCase) toResponse(s *entity.Sensor) *dto.SensorResponse {
	out := &dto.SensorResponse{
		ID:        s.ID,
		Name:      s.Name,
		Type:      s.Type,
		Unit:      s.Unit,
		Field:     s.Field,
		MinValue:  s.MinValue,
		MaxValue:  s.MaxValue,
		LotID:     s.LotID,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if uc.readings != nil {
		if rs := uc.readings.Readings(s.ID); len(rs) > 0 {
			last := rs[len(rs)-1]
			out.LastReading = &last
		}
	}
	return out
}
