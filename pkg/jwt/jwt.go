package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims carries the actor identity issued by the identity service.
// Role is one of: user, moderator, admin.
type Claims struct {
	jwt.RegisteredClaims
	ActorID  string `json:"actor_id"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role"`
}

// Manager signs and verifies service tokens
type Manager struct {
	secretKey []byte
	accessTTL time.Duration
}

// NewManager creates a new JWT manager
func NewManager(secret string, accessTTL time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secret),
		accessTTL: accessTTL,
	}
}

// GenerateToken issues a signed access token for the actor
func (m *Manager) GenerateToken(actorID, nickname, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			Subject:   actorID,
		},
		ActorID:  actorID,
		Nickname: nickname,
		Role:     role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken validates a token and returns its claims
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
