// Package token issues the HS256 access tokens validated by httpkit.AuthRequired.
package token

import (
	"time"

	"location_saver_backend/platform/httpkit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issued is a signed access token and the claims a logout needs.
type Issued struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID with a fresh jti.
func (i *Issuer) Issue(userID uuid.UUID) (Issued, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := httpkit.AccessClaims{
		Type: httpkit.AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ID: claims.ID, ExpiresAt: expiresAt}, nil
}
