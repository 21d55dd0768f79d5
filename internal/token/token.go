package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims for an ally session token, issued after a
// successful phone verification.
type Claims struct {
	jwt.RegisteredClaims
	AllyID string `json:"ally_id"`
	Phone  string `json:"phone"`
	Type   string `json:"type"` // always "ally"
}

// Issuer issues and verifies ally session JWTs with an HMAC secret.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewIssuer creates an Issuer.
//
//	issuerURL — the "iss" claim value; matches the API's base URL.
//	ttl       — token lifetime (default: 24 hours).
func NewIssuer(secret []byte, issuerURL string, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: secret, issuer: issuerURL, ttl: ttl}
}

// Issue creates a signed session token for the ally.
func (i *Issuer) Issue(allyID, phone string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   allyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.New().String(),
		},
		AllyID: allyID,
		Phone:  phone,
		Type:   "ally",
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return i.secret, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify session token: %w", err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}
	if claims.Type != "ally" {
		return nil, fmt.Errorf("not an ally session token")
	}
	return claims, nil
}
