package iot_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/iot"
)

func ptr(f float64) *float64 { return &f }

func TestWindow_ConservaSoloLosUltimosN(t *testing.T) {
	w := iot.NewWindow(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		w.Add(entity.Reading{SensorID: "s1", Value: float64(i), Timestamp: base.Add(time.Duration(i) * time.Second)})
	}
	got := w.Readings("s1")
	require.Len(t, got, 3)
	assert.Equal(t, []float64{2, 3, 4}, []float64{got[0].Value, got[1].Value, got[2].Value})
	assert.Equal(t, 4.0, w.Latest()["s1"].Value)
}

func TestWindow_TamanoPorDefecto(t *testing.T) {
	assert.Equal(t, iot.DefaultWindowSize, iot.NewWindow(0).Size())
	assert.Empty(t, iot.NewWindow(0).Readings("nada"))
}

func TestWindow_Concurrente(t *testing.T) {
	w := iot.NewWindow(60)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				w.Add(entity.Reading{SensorID: fmt.Sprintf("s%d", g%2), Value: float64(i)})
				_ = w.Latest()
			}
		}(g)
	}
	wg.Wait()
	assert.Len(t, w.Readings("s0"), 60)
	assert.Len(t, w.Readings("s1"), 60)
}

func TestWindow_Forget(t *testing.T) {
	w := iot.NewWindow(5)
	w.Add(entity.Reading{SensorID: "s1", Value: 1})
	w.Forget("s1")
	assert.Empty(t, w.Readings("s1"))
}

func TestEvaluator_DisparaPorFlanco(t *testing.T) {
	s := &entity.Sensor{ID: "t1", Name: "Temperatura", Unit: "°C", MinValue: ptr(10), MaxValue: ptr(30)}
	e := iot.NewEvaluator()

	assert.Nil(t, e.Evaluate(s, 25))

	b := e.Evaluate(s, 31)
	require.NotNil(t, b)
	assert.Equal(t, entity.AlertAboveMax, b.Type)
	assert.Contains(t, b.Message, "supera el máximo")

	assert.Nil(t, e.Evaluate(s, 35), "sigue en alarma, no repite")

	b = e.Evaluate(s, 5)
	require.NotNil(t, b, "cambia de máximo a mínimo")
	assert.Equal(t, entity.AlertBelowMin, b.Type)

	assert.True(t, e.InAlarm("t1"))
	assert.Nil(t, e.Evaluate(s, 20))
	assert.False(t, e.InAlarm("t1"))
	assert.NotNil(t, e.Evaluate(s, 40), "vuelve a disparar tras normalizarse")

	e.Reset("t1")
	assert.False(t, e.InAlarm("t1"))
}

func TestEvaluator_SinUmbralesNoAlerta(t *testing.T) {
	s := &entity.Sensor{ID: "b1", Name: "Bomba"}
	assert.Nil(t, iot.NewEvaluator().Evaluate(s, 1))
}

func TestParsePayload(t *testing.T) {
	got, err := iot.ParsePayload([]byte(`{"temperatura":24.5,"Humedad":"61","bomba":true,"nota":"x","extra":null}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"temperatura": 24.5, "humedad": 61, "bomba": 1}, got)

	got, err = iot.ParsePayload([]byte(`{"bomba":false}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got["bomba"])

	_, err = iot.ParsePayload([]byte(`no json`))
	assert.Error(t, err)
	_, err = iot.ParsePayload([]byte(`[1,2]`))
	assert.Error(t, err)
}
