package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
)

func zero() decimal.Decimal { return decimal.Zero }

// money formatea con separador de miles: 1234567.5 -> "$ 1.234.567,50".
func money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s$ %s,%s", sign, b.String(), frac)
}

func dateRange(from, to string) (*time.Time, *time.Time, error) {
	f, err := dto.ParseOptionalDate(from)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: desde: %v", domain.ErrInvalidInput, err)
	}
	t, err := dto.ParseOptionalDate(to)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hasta: %v", domain.ErrInvalidInput, err)
	}
	if t != nil && len(strings.TrimSpace(to)) == len("2006-01-02") {
		end := t.Add(24*time.Hour - time.Nanosecond)
		t = &end
	}
	return f, t, nil
}

func rangeLabel(from, to *time.Time) string {
	switch {
	case from == nil && to == nil:
		return "Todo el historial"
	case from == nil:
		return "Hasta " + to.Format("2006-01-02")
	case to == nil:
		return "Desde " + from.Format("2006-01-02")
	}
	return from.Format("2006-01-02") + " a " + to.Format("2006-01-02")
}
