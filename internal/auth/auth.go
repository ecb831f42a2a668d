// Package auth issues and verifies the signed credential tokens that
// identify API callers, and resolves Authorization headers to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

// ErrInvalidToken marks a credential that failed signature or expiry
// verification. A missing Authorization header is not an error.
var ErrInvalidToken = errors.New("invalid credential token")

// Claims is the token payload. UserID binds the credential to a user row.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens and resolves them to users.
type Verifier struct {
	secret []byte
	users  repository.UserRepository
}

func NewVerifier(secret string, users repository.UserRepository) *Verifier {
	return &Verifier{secret: []byte(secret), users: users}
}

// Sign issues a credential bound to the given user id.
func Sign(secret string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the bound user id.
func (v *Verifier) Verify(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return 0, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}
	return claims.UserID, nil
}

// Authenticate resolves a raw Authorization header to a user. An absent
// header is the anonymous state and yields (nil, nil); a present but
// unverifiable credential is an error, never a silent nil.
func (v *Verifier) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	if strings.TrimSpace(header) == "" {
		return nil, nil
	}

	parts := strings.Fields(header)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}

	userID, err := v.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve token user: %w", err)
	}
	return user, nil
}
