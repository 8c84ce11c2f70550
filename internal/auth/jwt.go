package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTAuthenticator struct {
	secret        string
	refreshSecret string
	aud           string
	iss           string
	accessExp     time.Duration
	refreshExp    time.Duration
}

func NewJWTAuthenticator(secret, refreshSecret, aud, iss string, accessExp, refreshExp time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:        secret,
		refreshSecret: refreshSecret,
		aud:           aud,
		iss:           iss,
		accessExp:     accessExp,
		refreshExp:    refreshExp,
	}
}

// GenerateTokens issues an access/refresh token pair for the admin session.
func (a *JWTAuthenticator) GenerateTokens(subject string) (string, string, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":  subject,
		"role": "admin",
		"exp":  now.Add(a.accessExp).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"iss":  a.iss,
		"aud":  a.aud,
	}
	refreshClaims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(a.refreshExp).Unix(),
		"iat": now.Unix(),
		"iss": a.iss,
	}

	access, err := a.signWithClaims(accessClaims, a.secret)
	if err != nil {
		return "", "", err
	}
	refresh, err := a.signWithClaims(refreshClaims, a.refreshSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (a *JWTAuthenticator) signWithClaims(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (a *JWTAuthenticator) ValidateAccessToken(token string) (*jwt.Token, error) {
	return a.validate(token, a.secret)
}

func (a *JWTAuthenticator) ValidateRefreshToken(token string) (*jwt.Token, error) {
	return a.validate(token, a.refreshSecret)
}

func (a *JWTAuthenticator) validate(token, secret string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
}
