package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret  = errors.New("jwt: secret vacío")
	ErrExpired      = errors.New("jwt: token expirado")
	ErrInvalidToken = errors.New("jwt: token inválido")
)

// leeway tolera desfases de reloj entre el emisor y el validador.
const leeway = 30 * time.Second

// Claims agrega al token el usuario y su rol, de modo que los middlewares
// resuelvan el rol sin consultar la base de datos.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	RoleID string `json:"rol_id"`
	Role   string `json:"rol"`
}

// Generate firma con HS256 un token válido por expMinutes minutos.
func Generate(secret, userID, roleID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	issued := time.Now()
	expires := issued.Add(time.Duration(expMinutes) * time.Minute)
	claims := &Claims{
		UserID: userID,
		RoleID: roleID,
		Role:   role,
	}
	claims.Issuer = issuer
	claims.Subject = userID
	claims.IssuedAt = jwt.NewNumericDate(issued)
	claims.ExpiresAt = jwt.NewNumericDate(expires)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse verifica firma y vigencia. Los errores son ErrEmptySecret, ErrExpired o ErrInvalidToken.
func Parse(secret, raw string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, errors.Join(ErrInvalidToken, err)
	}
}
