package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Valid reports whether the token carries an expiry claim strictly in the
// future. Absent, malformed, and expired tokens are all rejected alike.
// The signature is not checked here: the client holds no verification key,
// and the backend re-validates every request anyway. This guard only
// decides whether sending the token is worth attempting.
func Valid(token string) bool {
	return validAt(token, time.Now())
}

func validAt(token string, now time.Time) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(now)
}
