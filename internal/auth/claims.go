package auth

import (
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// AccessClaims are the claims carried in an encrypted v4.local token.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity returns the caller the token was issued for.
func (c *AccessClaims) Identity() domain.Identity {
	return domain.Identity{ID: c.UserID, Email: c.Email}
}
