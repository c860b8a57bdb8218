package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

func decimalOf(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCrop_CRUD(t *testing.T) {
	parcels, store, lotID := newParcels(t)
	ctx := context.Background()
	sub, err := parcels.CreateSublot(ctx, dto.SublotRequest{LotID: lotID, Name: "A"})
	require.NoError(t, err)
	uc := usecase.NewCropUseCase(store.Crops(), store.Sublots())

	crop, err := uc.Create(ctx, dto.CropRequest{SublotID: sub.ID, Name: "Café", Variety: "Castillo", SowingDate: "2026-01-15"})
	require.NoError(t, err)
	assert.Equal(t, entity.CropStatusActive, crop.Status)
	assert.Equal(t, 15, crop.SowingDate.Day())

	upd, err := uc.Update(ctx, crop.ID, dto.CropRequest{
		SublotID: sub.ID, Name: "Café", SowingDate: "2026-01-15", HarvestDate: "2026-09-01", Status: entity.CropStatusHarvested,
	})
	require.NoError(t, err)
	require.NotNil(t, upd.HarvestDate)
	assert.Equal(t, entity.CropStatusHarvested, upd.Status)

	list, err := uc.List(ctx, sub.ID, entity.CropStatusHarvested, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	require.NoError(t, uc.Delete(ctx, crop.ID))
	assert.ErrorIs(t, uc.Delete(ctx, crop.ID), domain.ErrNotFound)
}

func TestCrop_Validaciones(t *testing.T) {
	_, store, _ := newParcels(t)
	uc := usecase.NewCropUseCase(store.Crops(), store.Sublots())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CropRequest{Name: "Maíz", SowingDate: "15/01/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CropRequest{Name: "Maíz", SowingDate: "2026-03-01", HarvestDate: "2026-02-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CropRequest{Name: "Maíz", SowingDate: "2026-03-01", SublotID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
