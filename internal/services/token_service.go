package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenIssuer = "brokerage"

// TokenService wraps a session token in a signed JWT for API clients. The
// session itself stays authoritative: revoking it revokes the JWT.
type TokenService struct {
	Secret []byte
	Now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{Secret: []byte(secret)}
}

func (t *TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *TokenService) Issue(s Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   s.User.ID,
		ID:        s.Token,
		IssuedAt:  jwt.NewNumericDate(t.now()),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the wrapped session token.
func (t *TokenService) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}
