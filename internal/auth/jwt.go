package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service tokens identify trusted internal callers (sibling services, batch
// jobs) that have no acting user to attach. They are not end-user
// authentication.

// GenerateServiceToken signs a short-lived token naming the calling service.
func GenerateServiceToken(secret, serviceName string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"svc": serviceName,
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseServiceToken validates a service token and returns the service name.
func ParseServiceToken(secret, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["svc"] == nil {
		return "", errors.New("invalid claims")
	}

	name, ok := claims["svc"].(string)
	if !ok {
		return "", errors.New("invalid claims")
	}
	return name, nil
}
