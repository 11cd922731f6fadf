package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access tokens. Every token carries a
// unique ID so it can be revoked individually.
type TokenManager struct {
	secretKey      string
	accessDuration time.Duration
	now            func() time.Time
}

type TokenManagerConfig struct {
	SecretKey      string
	AccessDuration time.Duration
}

func NewTokenManager(cfg TokenManagerConfig) *TokenManager {
	if cfg.AccessDuration == 0 {
		cfg.AccessDuration = 24 * time.Hour
	}

	return &TokenManager{
		secretKey:      cfg.SecretKey,
		accessDuration: cfg.AccessDuration,
		now:            time.Now,
	}
}

func (tm *TokenManager) GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.accessDuration)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(tm.secretKey), nil
	}, jwt.WithTimeFunc(tm.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
