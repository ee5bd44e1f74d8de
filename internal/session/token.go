package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(id string, exp time.Time, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(raw string, secret []byte, now time.Time) (string, error) {
	var claims jwt.RegisteredClaims
	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil || !t.Valid {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("session token without id")
	}
	return claims.ID, nil
}
