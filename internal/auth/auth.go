// Package auth optionally binds the email a caller asserts to a signed
// token. When no secret is configured the service keeps trusting the
// asserted email, as the dashboard has always done.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const MinSecretLen = 32

var ErrWeakSecret = fmt.Errorf("token secret must be at least %d bytes", MinSecretLen)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Issue signs a token for email. It is used by operators and tests; the
// dashboard's identity provider issues tokens in production.
func (v *Verifier) Issue(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses an HS256 token and returns its email claim.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Email == "" {
		return "", errors.New("token has no email claim")
	}
	return claims.Email, nil
}

type ctxKey struct{}

// Middleware rejects requests without a valid bearer token and stores the
// verified email in the request context.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenStr == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			email, err := v.Verify(tokenStr)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity returns the verified email, if the request went through
// Middleware.
func Identity(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(ctxKey{}).(string)
	return email, ok
}

// Permits reports whether the request may act as asserted. Without a
// verified identity every assertion is accepted.
func Permits(ctx context.Context, asserted string) bool {
	email, ok := Identity(ctx)
	if !ok {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(asserted))
}

// Acting returns the email that scopes the request's data access: the
// verified email when there is one, otherwise the asserted email. Call it
// only after Permits has accepted asserted.
func Acting(ctx context.Context, asserted string) string {
	if email, ok := Identity(ctx); ok {
		return email
	}
	return asserted
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
