package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/gatejohn/internal/risk"
)

// VerifyTokenIssuer firma tokens de verificación "fui yo" que viajan en el
// aviso de riesgo. El endpoint externo que confirma el intento los valida
// con Verify; el core solo los emite.
type VerifyTokenIssuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// VerifyClaims son los claims del token de verificación.
type VerifyClaims struct {
	Score float64 `json:"score"`
	jwt.RegisteredClaims
}

var ErrBadVerifyToken = errors.New("notify: invalid verification token")

// Issue firma un token HS256 atado al assessment (jti = assessment id).
func (i VerifyTokenIssuer) Issue(as risk.Assessment) (string, error) {
	if len(i.Secret) == 0 {
		return "", fmt.Errorf("notify: empty signing secret")
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	now := time.Now().UTC()
	claims := VerifyClaims{
		Score: as.Score,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Issuer,
			Subject:   as.PrincipalID,
			ID:        as.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// Verify valida firma y expiración, y retorna los claims.
func (i VerifyTokenIssuer) Verify(token string) (*VerifyClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &VerifyClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadVerifyToken, err)
	}
	claims, ok := parsed.Claims.(*VerifyClaims)
	if !ok || !parsed.Valid {
		return nil, ErrBadVerifyToken
	}
	return claims, nil
}
