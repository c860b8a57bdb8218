package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/telemetry"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

func f64(v float64) *float64 { return &v }

func newSensors(t *testing.T) (*usecase.SensorUseCase, *telemetry.Service, *usecase.AlertUseCase) {
	t.Helper()
	store := memrepo.New()
	alerts := usecase.NewAlertUseCase(store.Alerts(), nil, nil)
	svc := telemetry.NewService(store.Sensors(), 10, alerts, nil, nil)
	return usecase.NewSensorUseCase(store.Sensors(), store.Lots(), svc), svc, alerts
}

func TestSensor_LecturasYTiempoReal(t *testing.T) {
	uc, svc, _ := newSensors(t)
	ctx := context.Background()

	s, err := uc.Create(ctx, dto.SensorRequest{Name: "Temperatura", Type: "Temperatura", Unit: "°C", Field: " Temperatura ", MaxValue: f64(30)})
	require.NoError(t, err)
	assert.Equal(t, "temperatura", s.Field)
	assert.True(t, s.Active)

	_, err = svc.Ingest(ctx, []byte(`{"temperatura":22}`))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, []byte(`{"temperatura":35}`))
	require.NoError(t, err)

	readings, err := uc.Readings(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, readings.WindowSize)
	assert.Len(t, readings.Readings, 2)

	rt, err := uc.Realtime(ctx)
	require.NoError(t, err)
	require.Len(t, rt, 1)
	require.NotNil(t, rt[0].Last)
	assert.Equal(t, 35.0, rt[0].Last.Value)
	assert.True(t, rt[0].InAlarm)

	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastReading)

	_, err = uc.Update(ctx, s.ID, dto.SensorRequest{Name: "Temperatura", Type: "temperatura", Field: "temperatura", MaxValue: f64(40)})
	require.NoError(t, err)
	assert.False(t, svc.InAlarm(s.ID), "cambiar umbrales reinicia la alarma")

	require.NoError(t, uc.Delete(ctx, s.ID))
	assert.Empty(t, svc.Readings(s.ID))
	_, err = uc.Readings(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSensor_Validaciones(t *testing.T) {
	uc, _, _ := newSensors(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.SensorRequest{Name: "H", Type: "humedad", Field: "humedad", MinValue: f64(80), MaxValue: f64(20)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.SensorRequest{Name: "H", Type: "humedad", Field: "humedad", LotID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAlert_StockBajoYLectura(t *testing.T) {
	_, _, alerts := newSensors(t)
	ctx := context.Background()

	alerts.NotifyLowStock(ctx, &entity.InventoryItem{
		SupplyID: "s1", SupplyName: "Urea", Unit: "kg", Quantity: decimalOf(2), MinStock: decimalOf(5),
	})

	list, err := alerts.List(ctx, dto.AlertQuery{Unread: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	a := list.Items[0]
	assert.Equal(t, entity.AlertLowStock, a.Type)
	assert.Contains(t, a.Message, "Urea")

	require.NoError(t, alerts.MarkRead(ctx, a.ID))
	list, err = alerts.List(ctx, dto.AlertQuery{Unread: true})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	require.NoError(t, alerts.Delete(ctx, a.ID))
	assert.ErrorIs(t, alerts.Delete(ctx, a.ID), domain.ErrNotFound)
}
