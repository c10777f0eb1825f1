package identity

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// claims mirrors the user payload the backend signs into its tokens.
type claims struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenParser turns backend-issued HS256 tokens into identities.
type TokenParser struct {
	secret []byte
	logger zerolog.Logger
}

// NewTokenParser creates a parser that verifies tokens with secret.
func NewTokenParser(secret string, logger zerolog.Logger) *TokenParser {
	return &TokenParser{
		secret: []byte(secret),
		logger: logger.With().Str("component", "token-parser").Logger(),
	}
}

// Parse verifies token and returns its identity. Missing, expired or
// tampered tokens yield the guest identity rather than an error.
func (p *TokenParser) Parse(token string) Identity {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Guest()
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		p.logger.Debug().Err(err).Msg("rejecting token, continuing as guest")
		return Guest()
	}

	userID := c.ID
	if userID == "" {
		userID = c.LegacyID
	}
	if userID == "" {
		userID = c.Subject
	}
	if userID == "" {
		return Guest()
	}

	return Identity{
		UserID: userID,
		Name:   c.Name,
		Email:  c.Email,
		Role:   c.Role,
		Token:  token,
	}
}
