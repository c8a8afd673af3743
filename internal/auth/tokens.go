package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/id"
)

const tokenAudience = "humidor-client"

// TokenService issues and verifies access tokens.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	issuer       string
	duration     time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service from a 32 byte key.
func NewTokenService(key []byte, issuer string, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: symmetricKey,
		issuer:       issuer,
		duration:     duration,
		now:          time.Now,
	}, nil
}

// Issue creates an encrypted token for who and returns it with its expiry.
func (s *TokenService) Issue(who domain.Identity) (string, time.Time, error) {
	if who.ID == "" {
		return "", time.Time{}, errors.New("issue token: user id is required")
	}

	now := s.now()
	expires := now.Add(s.duration)

	token := paseto.NewToken()
	token.SetIssuer(s.issuer)
	token.SetSubject(who.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Set only fails for values that cannot be marshalled.
	_ = token.Set("user_id", who.ID)
	//nolint:errcheck // Set only fails for values that cannot be marshalled.
	_ = token.Set("email", who.Email)

	return token.V4Encrypt(s.symmetricKey, nil), expires, nil
}

// Verify decrypts tokenString and checks audience, issuer and validity window.
func (s *TokenService) Verify(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(s.issuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid token: missing user_id")
	}

	return &claims, nil
}

// Duration returns the configured token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
