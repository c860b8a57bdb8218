package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/application/telemetry"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) Broadcast(kind string, _ any) {
	b.mu.Lock()
	b.events = append(b.events, kind)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) count(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, k := range b.events {
		if k == kind {
			n++
		}
	}
	return n
}

func ptr(v float64) *float64 { return &v }

func setup(t *testing.T) (*telemetry.Service, *memrepo.Store, *recordingBroadcaster) {
	t.Helper()
	store := memrepo.New()
	ctx := context.Background()
	require.NoError(t, store.Sensors().Create(ctx, &entity.Sensor{
		ID: "temp", Name: "Temperatura", Type: entity.SensorTemperature, Unit: "°C",
		Field: "temperatura", MinValue: ptr(10), MaxValue: ptr(30), Active: true,
	}))
	require.NoError(t, store.Sensors().Create(ctx, &entity.Sensor{
		ID: "pump", Name: "Bomba", Type: entity.SensorPump, Field: "bomba", Active: true,
	}))
	require.NoError(t, store.Sensors().Create(ctx, &entity.Sensor{
		ID: "off", Name: "Humedad vieja", Field: "humedad", Active: false,
	}))
	b := &recordingBroadcaster{}
	alerts := usecase.NewAlertUseCase(store.Alerts(), b, nil)
	return telemetry.NewService(store.Sensors(), 3, alerts, b, nil), store, b
}

func TestIngest_AsignaLecturasPorCampo(t *testing.T) {
	svc, _, b := setup(t)

	n, err := svc.Ingest(context.Background(), []byte(`{"temperatura":24.5,"humedad":61,"bomba":true}`))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "el sensor inactivo no recibe lecturas")

	require.Len(t, svc.Readings("temp"), 1)
	assert.Equal(t, 24.5, svc.Readings("temp")[0].Value)
	assert.Equal(t, 1.0, svc.Readings("pump")[0].Value)
	assert.Empty(t, svc.Readings("off"))
	assert.Equal(t, 2, b.count(ports.EventReading))
}

func TestIngest_PayloadInvalido(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Ingest(context.Background(), []byte(`[1,2]`))
	assert.Error(t, err)
}

func TestIngest_AlertaPorFlanco(t *testing.T) {
	svc, store, b := setup(t)
	ctx := context.Background()

	for _, p := range []string{`{"temperatura":31}`, `{"temperatura":33}`, `{"temperatura":20}`, `{"temperatura":35}`} {
		_, err := svc.Ingest(ctx, []byte(p))
		require.NoError(t, err)
	}

	list, total, err := store.Alerts().List(ctx, false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total, "una alerta por cada cruce")
	assert.Equal(t, entity.AlertAboveMax, list[0].Type)
	assert.Equal(t, 2, b.count(ports.EventAlert))
	assert.True(t, svc.InAlarm("temp"))
}

func TestIngest_VentanaConservaUltimos(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	for _, p := range []string{`{"bomba":0}`, `{"bomba":1}`, `{"bomba":0}`, `{"bomba":1}`} {
		_, err := svc.Ingest(ctx, []byte(p))
		require.NoError(t, err)
	}
	got := svc.Readings("pump")
	require.Len(t, got, 3)
	assert.Equal(t, []float64{1, 0, 1}, []float64{got[0].Value, got[1].Value, got[2].Value})

	svc.Forget("pump")
	assert.Empty(t, svc.Readings("pump"))
}
