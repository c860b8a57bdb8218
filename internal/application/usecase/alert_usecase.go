package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

var _ inventory.LowStockNotifier = (*AlertUseCase)(nil)

// AlertUseCase persiste alertas y las difunde a los clientes en vivo.
type AlertUseCase struct {
	repo        repository.AlertRepository
	broadcaster ports.Broadcaster
	log         *logger.Logger
}

// NewAlertUseCase construye el caso de uso. broadcaster puede ser nil.
func NewAlertUseCase(repo repository.AlertRepository, broadcaster ports.Broadcaster, log *logger.Logger) *AlertUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AlertUseCase{repo: repo, broadcaster: broadcaster, log: log}
}

// Raise guarda la alerta y la empuja por el hub.
func (uc *AlertUseCase) Raise(ctx context.Context, sensorID, kind, message string, value *float64) (*dto.AlertResponse, error) {
	a := &entity.Alert{
		ID:        uuid.New().String(),
		SensorID:  sensorID,
		Type:      kind,
		Message:   message,
		Value:     value,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("alerta: %w", err)
	}
	out := toAlertResponse(a)
	if uc.broadcaster != nil {
		uc.broadcaster.Broadcast(ports.EventAlert, out)
	}
	return &out, nil
}

// NotifyLowStock genera una alerta de stock bajo. Los errores solo se registran.
func (uc *AlertUseCase) NotifyLowStock(ctx context.Context, item *entity.InventoryItem) {
	qty, _ := item.Quantity.Float64()
	msg := fmt.Sprintf("%s: quedan %s %s, mínimo %s", item.SupplyName, item.Quantity.String(), item.Unit, item.MinStock.String())
	if _, err := uc.Raise(ctx, "", entity.AlertLowStock, msg, &qty); err != nil {
		uc.log.Error().Err(err).Str("insumo_id", item.SupplyID).Msg("no se pudo registrar alerta de stock bajo")
	}
}

// List alertas, opcionalmente solo las no leídas.
func (uc *AlertUseCase) List(ctx context.Context, q dto.AlertQuery) (*dto.ListResponse[dto.AlertResponse], error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, q.Unread, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AlertResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toAlertResponse(a))
	}
	return &dto.ListResponse[dto.AlertResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// MarkRead marca la alerta como leída.
func (uc *AlertUseCase) MarkRead(ctx context.Context, id string) error {
	return uc.repo.MarkRead(ctx, id)
}

// Delete elimina la alerta.
func (uc *AlertUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toAlertResponse(a *entity.Alert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:        a.ID,
		SensorID:  a.SensorID,
		Type:      a.Type,
		Message:   a.Message,
		Value:     a.Value,
		Read:      a.Read,
		CreatedAt: a.CreatedAt,
	}
}
