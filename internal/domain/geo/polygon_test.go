package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/geo"
)

var square = []entity.Point{
	{Lat: 0, Lng: 0},
	{Lat: 0, Lng: 1},
	{Lat: 1, Lng: 1},
	{Lat: 1, Lng: 0},
}

func TestNormalizeRing_CierraElAnillo(t *testing.T) {
	ring, err := geo.NormalizeRing(square)
	require.NoError(t, err)
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
}

func TestNormalizeRing_AnilloYaCerradoNoSeDuplica(t *testing.T) {
	closed := append(append([]entity.Point{}, square...), square[0])
	ring, err := geo.NormalizeRing(closed)
	require.NoError(t, err)
	assert.Len(t, ring, 5)
}

func TestNormalizeRing_Errores(t *testing.T) {
	cases := map[string][]entity.Point{
		"vacío":             {},
		"dos vértices":      {{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
		"repetidos":         {{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 1, Lng: 1}},
		"ida y vuelta":      {{Lat: 4, Lng: -74}, {Lat: 4.1, Lng: -74.1}, {Lat: 4, Lng: -74}, {Lat: 4.1, Lng: -74.1}},
		"colineales":        {{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
		"latitud inválida":  {{Lat: 91, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}},
		"longitud inválida": {{Lat: 0, Lng: 181}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}},
	}
	for name, pts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := geo.NormalizeRing(pts)
			assert.ErrorIs(t, err, domain.ErrInvalidGeometry)
		})
	}
}

func TestAreaM2_CuadradoDeUnGradoEnElEcuador(t *testing.T) {
	ring, err := geo.NormalizeRing(square)
	require.NoError(t, err)
	// ~ 111.32 km x 110.57 km
	area := geo.AreaM2(ring)
	assert.InDelta(t, 1.2308e10, area, 0.01e10)
}

func TestContainsYWithin(t *testing.T) {
	outer, _ := geo.NormalizeRing(square)
	assert.True(t, geo.Contains(outer, entity.Point{Lat: 0.5, Lng: 0.5}))
	assert.True(t, geo.Contains(outer, entity.Point{Lat: 0, Lng: 0.5}), "borde cuenta como dentro")
	assert.False(t, geo.Contains(outer, entity.Point{Lat: 1.5, Lng: 0.5}))

	inner, _ := geo.NormalizeRing([]entity.Point{{Lat: 0.2, Lng: 0.2}, {Lat: 0.2, Lng: 0.8}, {Lat: 0.8, Lng: 0.5}})
	assert.True(t, geo.Within(inner, outer))

	crossing, _ := geo.NormalizeRing([]entity.Point{{Lat: 0.2, Lng: 0.2}, {Lat: 0.2, Lng: 1.8}, {Lat: 0.8, Lng: 0.5}})
	assert.False(t, geo.Within(crossing, outer))

	assert.True(t, geo.Within(inner, nil), "sin polígono padre no hay restricción")
}
