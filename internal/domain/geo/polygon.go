// Package geo valida y mide los polígonos de lotes y sublotes (grados decimales WGS84).
package geo

import (
	"fmt"
	"math"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

const (
	earthRadius = 6378137.0 // metros, WGS84
	epsilon     = 1e-12
)

// NormalizeRing valida un polígono y lo devuelve cerrado (último vértice = primero).
// Exige al menos 3 vértices distintos con latitud/longitud en rango.
func NormalizeRing(points []entity.Point) ([]entity.Point, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: el polígono no tiene coordenadas", domain.ErrInvalidGeometry)
	}
	ring := make([]entity.Point, 0, len(points)+1)
	for i, p := range points {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return nil, fmt.Errorf("%w: vértice %d fuera de rango", domain.ErrInvalidGeometry, i)
		}
		if len(ring) > 0 && samePoint(ring[len(ring)-1], p) {
			continue
		}
		ring = append(ring, p)
	}
	if len(ring) > 1 && samePoint(ring[0], ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	if distinct(ring) < 3 {
		return nil, fmt.Errorf("%w: se requieren al menos 3 vértices distintos", domain.ErrInvalidGeometry)
	}
	ring = append(ring, ring[0])
	if math.Abs(planarArea(ring)) < epsilon {
		return nil, fmt.Errorf("%w: los vértices son colineales", domain.ErrInvalidGeometry)
	}
	return ring, nil
}

// distinct cuenta vértices distintos a una precisión de 1e-9 grados.
func distinct(points []entity.Point) int {
	seen := make(map[[2]int64]struct{}, len(points))
	for _, p := range points {
		seen[[2]int64{int64(math.Round(p.Lat * 1e9)), int64(math.Round(p.Lng * 1e9))}] = struct{}{}
	}
	return len(seen)
}

// planarArea área con signo en grados² (fórmula del zapato) de un anillo cerrado.
func planarArea(ring []entity.Point) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i].Lng*ring[i+1].Lat - ring[i+1].Lng*ring[i].Lat
	}
	return sum / 2
}

// AreaM2 área aproximada en metros cuadrados de un anillo cerrado (exceso esférico).
func AreaM2(ring []entity.Point) float64 {
	if len(ring) < 4 {
		return 0
	}
	var total float64
	for i := 0; i < len(ring)-1; i++ {
		p1, p2 := ring[i], ring[i+1]
		total += rad(p2.Lng-p1.Lng) * (2 + math.Sin(rad(p1.Lat)) + math.Sin(rad(p2.Lat)))
	}
	return math.Abs(total * earthRadius * earthRadius / 2)
}

// Contains informa si p está dentro del anillo (los bordes cuentan como dentro).
func Contains(ring []entity.Point, p entity.Point) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	inside := false
	for i, j := 0, n-2; i < n-1; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Within informa si todos los vértices de inner están dentro de outer.
func Within(inner, outer []entity.Point) bool {
	if len(outer) == 0 {
		return true
	}
	for _, p := range inner {
		if !Contains(outer, p) {
			return false
		}
	}
	return true
}

func onSegment(a, b, p entity.Point) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if math.Abs(cross) > epsilon {
		return false
	}
	return p.Lng >= math.Min(a.Lng, b.Lng)-epsilon && p.Lng <= math.Max(a.Lng, b.Lng)+epsilon &&
		p.Lat >= math.Min(a.Lat, b.Lat)-epsilon && p.Lat <= math.Max(a.Lat, b.Lat)+epsilon
}

func samePoint(a, b entity.Point) bool {
	return math.Abs(a.Lat-b.Lat) < epsilon && math.Abs(a.Lng-b.Lng) < epsilon
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
