package repository

import (
	"context"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// SensorRepository persistencia de sensores.
type SensorRepository interface {
	Create(ctx context.Context, s *entity.Sensor) error
	GetByID(ctx context.Context, id string) (*entity.Sensor, error)
	List(ctx context.Context) ([]*entity.Sensor, error)
	ListActive(ctx context.Context) ([]*entity.Sensor, error)
	Update(ctx context.Context, s *entity.Sensor) error
	Delete(ctx context.Context, id string) error
}

// AlertRepository persistencia de alertas.
type AlertRepository interface {
	Create(ctx context.Context, a *entity.Alert) error
	List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*entity.Alert, int, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
