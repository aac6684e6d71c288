package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// SessionClaims is what the marketplace's auth service puts in its tokens.
type SessionClaims struct {
	Subject string
	Email   string
	Role    string
}

// GenerateToken creates a signed JWT. The auth service owns real issuance;
// this exists for tooling and tests.
func GenerateToken(secret []byte, subject, email, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the session claims.
func ValidateToken(secret []byte, tokenString string) (*SessionClaims, error) {
	if len(secret) == 0 {
		return nil, errors.New("no signing secret configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &SessionClaims{Subject: sub, Email: email, Role: role}, nil
}
