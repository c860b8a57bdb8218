package iot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/agrotrack-api/internal/domain"
)

// ParsePayload decodifica el JSON del dispositivo en campo -> valor.
// Los booleanos se mapean a 1/0; los números en texto se aceptan; el resto se ignora.
// Un payload que no es un objeto JSON devuelve error.
func ParsePayload(raw []byte) (map[string]float64, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", domain.ErrInvalidInput, err)
	}
	out := make(map[string]float64, len(fields))
	for k, v := range fields {
		key := strings.ToLower(strings.TrimSpace(k))
		switch val := v.(type) {
		case float64:
			out[key] = val
		case bool:
			if val {
				out[key] = 1
			} else {
				out[key] = 0
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				out[key] = f
			}
		}
	}
	return out, nil
}
