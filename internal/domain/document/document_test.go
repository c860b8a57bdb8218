package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/document"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name             string
		docType, number  string
		wantType, wantNo string
	}{
		{"cédula con puntos", "cc", "1.020.304.050", "CC", "1020304050"},
		{"pasaporte", " pas ", "ab12345", "PAS", "AB12345"},
		{"NIT con guion", "NIT", "800.197.268-4", "NIT", "800197268-4"},
		{"NIT sin separadores", "nit", "8001972684", "NIT", "800197268-4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotType, gotNo, err := document.Normalize(tc.docType, tc.number)
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, gotType)
			assert.Equal(t, tc.wantNo, gotNo)
		})
	}
}

func TestNormalize_Rechazos(t *testing.T) {
	cases := []struct {
		name            string
		docType, number string
	}{
		{"tipo desconocido", "DNI", "123"},
		{"número vacío", "CC", "  "},
		{"cédula con letras", "CC", "12A45"},
		{"pasaporte con símbolos", "PAS", "AB-123"},
		{"NIT sin dígito de verificación", "NIT", "800197268"},
		{"NIT con dígito errado", "NIT", "800197268-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := document.Normalize(tc.docType, tc.number)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestVerificationDigit(t *testing.T) {
	d, err := document.VerificationDigit("800197268")
	require.NoError(t, err)
	assert.Equal(t, byte('4'), d)

	d, err = document.VerificationDigit("900373115")
	require.NoError(t, err)
	assert.Equal(t, byte('3'), d)

	_, err = document.VerificationDigit("1234")
	assert.Error(t, err)
}
