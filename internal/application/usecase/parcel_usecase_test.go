package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

func square(lat, lng, side float64) []entity.Point {
	return []entity.Point{
		{Lat: lat, Lng: lng},
		{Lat: lat, Lng: lng + side},
		{Lat: lat + side, Lng: lng + side},
		{Lat: lat + side, Lng: lng},
	}
}

func newParcels(t *testing.T) (*usecase.ParcelUseCase, *memrepo.Store, string) {
	t.Helper()
	store := memrepo.New()
	uc := usecase.NewParcelUseCase(store.Lots(), store.Sublots())
	lot, err := uc.CreateLot(context.Background(), dto.LotRequest{Name: "La Esperanza"})
	require.NoError(t, err)
	return uc, store, lot.ID
}

func TestSetLotCoordinates_CierraYCalculaArea(t *testing.T) {
	uc, _, lotID := newParcels(t)

	resp, err := uc.SetLotCoordinates(context.Background(), lotID, square(4.5, -75.7, 0.01))
	require.NoError(t, err)
	assert.Len(t, resp.Coordinates, 5, "anillo cerrado")
	assert.Equal(t, resp.Coordinates[0], resp.Coordinates[4])
	assert.True(t, resp.AreaM2.GreaterThan(decimalOf(1_200_000)), resp.AreaM2.String())
	assert.True(t, resp.AreaM2.LessThan(decimalOf(1_250_000)), resp.AreaM2.String())
}

func TestSetLotCoordinates_Invalidas(t *testing.T) {
	uc, _, lotID := newParcels(t)
	ctx := context.Background()

	_, err := uc.SetLotCoordinates(ctx, lotID, []entity.Point{})
	assert.ErrorIs(t, err, domain.ErrInvalidGeometry)

	_, err = uc.SetLotCoordinates(ctx, lotID, []entity.Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}})
	assert.ErrorIs(t, err, domain.ErrInvalidGeometry)

	_, err = uc.SetLotCoordinates(ctx, "no-existe", square(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetSublotCoordinates_DebeQuedarDentroDelLote(t *testing.T) {
	uc, _, lotID := newParcels(t)
	ctx := context.Background()
	_, err := uc.SetLotCoordinates(ctx, lotID, square(4.5, -75.7, 0.01))
	require.NoError(t, err)

	sub, err := uc.CreateSublot(ctx, dto.SublotRequest{LotID: lotID, Name: "Sublote A"})
	require.NoError(t, err)

	got, err := uc.SetSublotCoordinates(ctx, sub.ID, square(4.502, -75.698, 0.004))
	require.NoError(t, err)
	assert.True(t, got.AreaM2.IsPositive())

	_, err = uc.SetSublotCoordinates(ctx, sub.ID, square(4.505, -75.695, 0.01))
	assert.ErrorIs(t, err, domain.ErrOutsideParent)

	// achicar el lote dejando fuera al sublote
	_, err = uc.SetLotCoordinates(ctx, lotID, square(4.5, -75.7, 0.001))
	assert.ErrorIs(t, err, domain.ErrOutsideParent)
}

func TestGetLot_IncluyeSublotes(t *testing.T) {
	uc, _, lotID := newParcels(t)
	ctx := context.Background()
	_, err := uc.CreateSublot(ctx, dto.SublotRequest{LotID: lotID, Name: "Sublote A"})
	require.NoError(t, err)

	lot, err := uc.GetLot(ctx, lotID)
	require.NoError(t, err)
	require.Len(t, lot.Sublots, 1)
	assert.Equal(t, "Sublote A", lot.Sublots[0].Name)
	assert.NotNil(t, lot.Coordinates)

	_, err = uc.CreateSublot(ctx, dto.SublotRequest{LotID: "no-existe", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteLot_ConSublotesEsConflicto(t *testing.T) {
	uc, _, lotID := newParcels(t)
	ctx := context.Background()
	sub, err := uc.CreateSublot(ctx, dto.SublotRequest{LotID: lotID, Name: "Sublote A"})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeleteLot(ctx, lotID), domain.ErrConflict)
	require.NoError(t, uc.DeleteSublot(ctx, sub.ID))
	require.NoError(t, uc.DeleteLot(ctx, lotID))
	assert.ErrorIs(t, uc.DeleteLot(ctx, lotID), domain.ErrNotFound)
}

func TestMap_GeoJSONSoloConPoligono(t *testing.T) {
	uc, _, lotID := newParcels(t)
	ctx := context.Background()
	_, err := uc.CreateLot(ctx, dto.LotRequest{Name: "Sin polígono"})
	require.NoError(t, err)
	_, err = uc.SetLotCoordinates(ctx, lotID, square(4.5, -75.7, 0.01))
	require.NoError(t, err)

	fc, err := uc.Map(ctx)
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "Polygon", f.Geometry.Type)
	assert.Equal(t, [2]float64{-75.7, 4.5}, f.Geometry.Coordinates[0][0], "GeoJSON usa [lng, lat]")
	assert.Equal(t, "lote", f.Properties["tipo"])
}
