package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Tokens are issued by the external identity provider and only validated
// here, with a shared HS256 secret. Sign exists for tests and local tooling.

var (
	secret []byte
	issuer string
)

// Configure sets the shared secret and expected issuer (call on startup).
func Configure(s, iss string) {
	if s != "" {
		secret = []byte(s)
	}
	issuer = iss
}

// Claims is the identity-provider token payload. The subject is the user id.
type Claims struct {
	jwtlib.RegisteredClaims
}

// UserID returns the principal carried by the token.
func (c *Claims) UserID() string { return c.Subject }

// Sign creates a signed token for the given user ID.
func Sign(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse validates a token string and returns the claims.
func Parse(tokenStr string) (*Claims, error) {
	opts := []jwtlib.ParserOption{jwtlib.WithValidMethods([]string{"HS256"})}
	if issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(issuer))
	}
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if len(secret) == 0 {
			return nil, fmt.Errorf("jwt secret not configured")
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
