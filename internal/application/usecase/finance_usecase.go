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

// FinanceUseCase registro de ingresos y egresos.
type FinanceUseCase struct {
	repo     repository.FinanceRepository
	cropRepo repository.CropRepository
}

// NewFinanceUseCase construye el caso de uso.
func NewFinanceUseCase(repo repository.FinanceRepository, cropRepo repository.CropRepository) *FinanceUseCase {
	return &FinanceUseCase{repo: repo, cropRepo: cropRepo}
}

// Create registra un ingreso o egreso del usuario autenticado.
func (uc *FinanceUseCase) Create(ctx context.Context, userID string, in dto.FinanceRequest) (*dto.FinanceResponse, error) {
	r := &entity.FinanceRecord{ID: uuid.New().String(), UserID: userID, CreatedAt: time.Now()}
	if err := uc.apply(ctx, r, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return toFinanceResponse(r), nil
}

// GetByID obtiene un registro.
func (uc *FinanceUseCase) GetByID(ctx context.Context, id string) (*dto.FinanceResponse, error) {
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFinanceResponse(r), nil
}

// List registros filtrados por tipo, cultivo y rango de fechas.
func (uc *FinanceUseCase) List(ctx context.Context, q dto.FinanceQuery) (*dto.ListResponse[dto.FinanceResponse], error) {
	q.DefaultPage()
	if q.Type != "" && q.Type != entity.FinanceIncome && q.Type != entity.FinanceExpense {
		return nil, fmt.Errorf("%w: tipo debe ser ingreso o egreso", domain.ErrInvalidInput)
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, repository.FinanceFilter{
		Type: q.Type, CropID: q.CropID, From: from, To: to, Limit: q.Limit, Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.FinanceResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toFinanceResponse(r))
	}
	return &dto.ListResponse[dto.FinanceResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Update reemplaza los datos del registro.
func (uc *FinanceUseCase) Update(ctx context.Context, id string, in dto.FinanceRequest) (*dto.FinanceResponse, error) {
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, r, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return toFinanceResponse(r), nil
}

// Delete elimina el registro.
func (uc *FinanceUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *FinanceUseCase) apply(ctx context.Context, r *entity.FinanceRecord, in dto.FinanceRequest) error {
	if in.Type != entity.FinanceIncome && in.Type != entity.FinanceExpense {
		return fmt.Errorf("%w: tipo debe ser ingreso o egreso", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	date := time.Now()
	if strings.TrimSpace(in.Date) != "" {
		d, err := dto.ParseDate(in.Date)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		date = d
	}
	if in.CropID != "" {
		crop, err := uc.cropRepo.GetByID(ctx, in.CropID)
		if err != nil {
			return err
		}
		if crop == nil {
			return fmt.Errorf("%w: cultivo", domain.ErrNotFound)
		}
	}
	r.Type = in.Type
	r.Concept = strings.TrimSpace(in.Concept)
	r.Amount = in.Amount
	r.Date = date
	r.CropID = in.CropID
	return nil
}

func (uc *FinanceUseCase) get(ctx context.Context, id string) (*entity.FinanceRecord, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: registro financiero", domain.ErrNotFound)
	}
	return r, nil
}

// parseRange interpreta desde/hasta; un hasta de solo fecha cubre el día completo.
func parseRange(from, to string) (*time.Time, *time.Time, error) {
	f, err := dto.ParseOptionalDate(from)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: desde: %v", domain.ErrInvalidInput, err)
	}
	t, err := dto.ParseOptionalDate(to)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hasta: %v", domain.ErrInvalidInput, err)
	}
	if t != nil && len(strings.TrimSpace(to)) == len("2006-01-02") {
		end := t.Add(24*time.Hour - time.Nanosecond)
		t = &end
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, fmt.Errorf("%w: hasta anterior a desde", domain.ErrInvalidInput)
	}
	return f, t, nil
}

func toFinanceResponse(r *entity.FinanceRecord) *dto.FinanceResponse {
	return &dto.FinanceResponse{
		ID:        r.ID,
		Type:      r.Type,
		Concept:   r.Concept,
		Amount:    r.Amount,
		Date:      r.Date,
		CropID:    r.CropID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}
