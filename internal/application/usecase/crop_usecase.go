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

// CropUseCase casos de uso CRUD para cultivos.
type CropUseCase struct {
	repo       repository.CropRepository
	sublotRepo repository.SublotRepository
}

// NewCropUseCase construye el caso de uso.
func NewCropUseCase(repo repository.CropRepository, sublotRepo repository.SublotRepository) *CropUseCase {
	return &CropUseCase{repo: repo, sublotRepo: sublotRepo}
}

// Create crea un cultivo.
func (uc *CropUseCase) Create(ctx context.Context, in dto.CropRequest) (*dto.CropResponse, error) {
	crop := &entity.Crop{ID: uuid.New().String(), Status: entity.CropStatusActive}
	if err := uc.apply(ctx, crop, in); err != nil {
		return nil, err
	}
	crop.CreatedAt = crop.UpdatedAt
	if err := uc.repo.Create(ctx, crop); err != nil {
		return nil, err
	}
	return toCropResponse(crop), nil
}

// GetByID obtiene un cultivo.
func (uc *CropUseCase) GetByID(ctx context.Context, id string) (*dto.CropResponse, error) {
	crop, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCropResponse(crop), nil
}

// List cultivos filtrados por sublote y estado.
func (uc *CropUseCase) List(ctx context.Context, sublotID, status string, page dto.PageRequest) (*dto.ListResponse[dto.CropResponse], error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.CropFilter{SublotID: sublotID, Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CropResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCropResponse(c))
	}
	return &dto.ListResponse[dto.CropResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update reemplaza los datos del cultivo.
func (uc *CropUseCase) Update(ctx context.Context, id string, in dto.CropRequest) (*dto.CropResponse, error) {
	crop, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, crop, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, crop); err != nil {
		return nil, err
	}
	return toCropResponse(crop), nil
}

// Delete elimina un cultivo; ErrNotFound si no existe.
func (uc *CropUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *CropUseCase) apply(ctx context.Context, crop *entity.Crop, in dto.CropRequest) error {
	sowing, err := dto.ParseDate(in.SowingDate)
	if err != nil {
		return fmt.Errorf("%w: fecha_siembra: %v", domain.ErrInvalidInput, err)
	}
	harvest, err := dto.ParseOptionalDate(in.HarvestDate)
	if err != nil {
		return fmt.Errorf("%w: fecha_cosecha: %v", domain.ErrInvalidInput, err)
	}
	if harvest != nil && harvest.Before(sowing) {
		return fmt.Errorf("%w: la cosecha no puede ser anterior a la siembra", domain.ErrInvalidInput)
	}
	if in.SublotID != "" && in.SublotID != crop.SublotID {
		s, err := uc.sublotRepo.GetByID(ctx, in.SublotID)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: sublote", domain.ErrNotFound)
		}
	}
	crop.SublotID = in.SublotID
	crop.Name = strings.TrimSpace(in.Name)
	crop.Variety = in.Variety
	crop.SowingDate = sowing
	crop.HarvestDate = harvest
	if in.Status != "" {
		crop.Status = in.Status
	}
	crop.UpdatedAt = time.Now()
	return nil
}

func (uc *CropUseCase) get(ctx context.Context, id string) (*entity.Crop, error) {
	crop, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if crop == nil {
		return nil, fmt.Errorf("%w: cultivo", domain.ErrNotFound)
	}
	return crop, nil
}

func toCropResponse(c *entity.Crop) *dto.CropResponse {
	return &dto.CropResponse{
		ID:          c.ID,
		SublotID:    c.SublotID,
		Name:        c.Name,
		Variety:     c.Variety,
		SowingDate:  c.SowingDate,
		HarvestDate: c.HarvestDate,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
