// Package document normaliza y valida documentos de identidad colombianos.
package document

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// pesos del dígito de verificación del NIT (módulo 11), sobre los 9 primeros dígitos.
var nitWeights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// Normalize devuelve tipo y número en forma canónica.
// CC, CE y TI: solo dígitos (se quitan puntos y espacios). PAS: alfanumérico en mayúsculas.
// NIT: 9 dígitos más dígito de verificación, guardado como "900123456-7".
func Normalize(docType, number string) (string, string, error) {
	t := strings.ToUpper(strings.TrimSpace(docType))
	if !entity.ValidDocumentType(t) {
		return "", "", fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, docType)
	}
	n := strings.TrimSpace(number)
	if n == "" {
		return "", "", fmt.Errorf("%w: número de documento vacío", domain.ErrInvalidInput)
	}
	switch t {
	case entity.DocPAS:
		n = strings.ToUpper(n)
		for _, r := range n {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return "", "", fmt.Errorf("%w: pasaporte solo admite letras y dígitos", domain.ErrInvalidInput)
			}
		}
		return t, n, nil
	case entity.DocNIT:
		nit, err := normalizeNIT(n)
		if err != nil {
			return "", "", err
		}
		return t, nit, nil
	default:
		digits, ok := onlyDigits(n, ".")
		if !ok {
			return "", "", fmt.Errorf("%w: %s solo admite dígitos", domain.ErrInvalidInput, t)
		}
		return t, digits, nil
	}
}

// VerificationDigit calcula el dígito de verificación de los 9 primeros dígitos del NIT.
func VerificationDigit(base string) (byte, error) {
	if len(base) < 9 {
		return 0, fmt.Errorf("%w: el NIT requiere 9 dígitos, se encontraron %d", domain.ErrInvalidInput, len(base))
	}
	var sum int
	for i := 0; i < 9; i++ {
		sum += int(base[i]-'0') * nitWeights[i]
	}
	rem := sum % 11
	if rem == 0 || rem == 1 {
		return byte('0' + rem), nil
	}
	return byte('0' + (11 - rem)), nil
}

func normalizeNIT(n string) (string, error) {
	digits, ok := onlyDigits(n, ".-")
	if !ok {
		return "", fmt.Errorf("%w: NIT solo admite dígitos, puntos y guion", domain.ErrInvalidInput)
	}
	if len(digits) != 10 {
		return "", fmt.Errorf("%w: el NIT debe incluir dígito de verificación (10 dígitos), se recibieron %d", domain.ErrInvalidInput, len(digits))
	}
	want, err := VerificationDigit(digits)
	if err != nil {
		return "", err
	}
	if digits[9] != want {
		return "", fmt.Errorf("%w: dígito de verificación del NIT inválido: esperado %c", domain.ErrInvalidInput, want)
	}
	return digits[:9] + "-" + digits[9:], nil
}

// onlyDigits quita los separadores permitidos y espacios; ok=false si queda algo que no es dígito.
func onlyDigits(s, separators string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case r == ' ' || strings.ContainsRune(separators, r):
		default:
			return "", false
		}
	}
	return b.String(), b.Len() > 0
}
