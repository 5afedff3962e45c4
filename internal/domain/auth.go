package domain

import (
	"context"
	"time"
)

type Token string

type TokenClaims struct {
	JTI       string // уникальный id токена
	UserID    UserID
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Хеширование паролей
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// Управление сессионными токенами (JWT; реализация в internal/auth)
type TokenManager interface {
	Issue(ctx context.Context, u User) (Token, TokenClaims, error)
	Parse(ctx context.Context, t Token) (TokenClaims, error)
}

// Блэклист/ревокация токенов (Redis)
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
