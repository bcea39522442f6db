package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer is how long before its expiry a token stops being valid.
const expiryBuffer = 30 * time.Second

// ErrMalformedToken is returned when a bearer token cannot be decoded.
var ErrMalformedToken = errors.New("malformed access token")

// Token is the grant returned by the token endpoint.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	JTI          string    `json:"jti,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token is set and not about to expire.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// Claims are the UAA claims the CLI displays.
type Claims struct {
	UserName  string
	UserID    string
	Email     string
	ClientID  string
	ExpiresAt time.Time
}

// ParseTokenClaims decodes the claims of a UAA bearer token without
// verifying its signature. The server verifies tokens; this is for display.
func ParseTokenClaims(accessToken string) (*Claims, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	result := &Claims{
		UserName: stringClaim(claims, "user_name"),
		UserID:   stringClaim(claims, "user_id"),
		Email:    stringClaim(claims, "email"),
		ClientID: stringClaim(claims, "client_id"),
	}

	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}

	return result, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)

	return value
}
