// Package auth verifies bearer tokens issued by the hosted auth service.
package auth

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ssth/ssth-inventory/internal/shared"
)

var (
	// ErrMissingToken indicates the Authorization header is absent or not a bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken indicates a token that failed signature or claim checks.
	ErrInvalidToken = errors.New("auth: invalid or expired token")
)

// Claims mirrors the access token payload of the hosted auth service.
type Claims struct {
	jwtlib.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier validates HS256 access tokens.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewVerifier constructs a Verifier. Empty issuer or audience disables that check.
func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// Verify parses the token and returns the authenticated actor.
func (v *Verifier) Verify(token string) (shared.Actor, error) {
	if strings.TrimSpace(token) == "" {
		return shared.Actor{}, ErrMissingToken
	}
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithLeeway(v.leeway),
		jwtlib.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwtlib.WithAudience(v.audience))
	}

	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return shared.Actor{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return shared.Actor{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return shared.Actor{}, ErrInvalidToken
	}
	return shared.Actor{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
