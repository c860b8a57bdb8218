// Package iot reglas puras de las lecturas de sensores: ventana deslizante,
// evaluación de umbrales y decodificación del payload publicado por los dispositivos.
package iot

import (
	"sync"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// DefaultWindowSize puntos que se conservan por sensor.
const DefaultWindowSize = 60

// Window guarda las últimas N lecturas por sensor. Seguro para uso concurrente.
type Window struct {
	mu      sync.RWMutex
	size    int
	buffers map[string]*ring
}

type ring struct {
	data  []entity.Reading
	next  int
	count int
}

// NewWindow crea una ventana de tamaño size (DefaultWindowSize si size <= 0).
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{size: size, buffers: make(map[string]*ring)}
}

// Size capacidad por sensor.
func (w *Window) Size() int { return w.size }

// Add agrega una lectura; al superar la capacidad descarta la más antigua.
func (w *Window) Add(r entity.Reading) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.buffers[r.SensorID]
	if !ok {
		b = &ring{data: make([]entity.Reading, w.size)}
		w.buffers[r.SensorID] = b
	}
	b.data[b.next] = r
	b.next = (b.next + 1) % w.size
	if b.count < w.size {
		b.count++
	}
}

// Readings lecturas del sensor en orden cronológico (copia).
func (w *Window) Readings(sensorID string) []entity.Reading {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.buffers[sensorID]
	if !ok {
		return []entity.Reading{}
	}
	out := make([]entity.Reading, 0, b.count)
	start := (b.next - b.count + w.size) % w.size
	for i := 0; i < b.count; i++ {
		out = append(out, b.data[(start+i)%w.size])
	}
	return out
}

// Latest última lectura de cada sensor con datos.
func (w *Window) Latest() map[string]entity.Reading {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]entity.Reading, len(w.buffers))
	for id, b := range w.buffers {
		if b.count == 0 {
			continue
		}
		out[id] = b.data[(b.next-1+w.size)%w.size]
	}
	return out
}

// Forget elimina el historial de un sensor (p. ej. al borrarlo).
func (w *Window) Forget(sensorID string) {
	w.mu.Lock()
	delete(w.buffers, sensorID)
	w.mu.Unlock()
}
