package session

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cashloan/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// Claims is what can be read from a JWT without verifying it. The backend
// still verifies every token; the gateway only uses claims to refuse tokens
// that are already expired and to know the caller's role.
type Claims struct {
	domain.Principal
	ExpiresAt time.Time
	JWT       bool
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect parses token claims. Opaque tokens (e.g. "12|abcdef") return zero
// Claims with JWT=false and no error.
func Inspect(token string) (Claims, error) {
	if strings.Count(token, ".") != 2 {
		return Claims{}, nil
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse token claims: %w", err)
	}

	out := Claims{JWT: true}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	for _, key := range []string{"user_id", "sub", "id"} {
		if v, ok := mc[key]; ok && v != nil {
			out.UserID = claimString(v)
			break
		}
	}
	if r, ok := mc["role"].(string); ok {
		out.Role = domain.Role(strings.ToLower(strings.TrimSpace(r)))
	}
	return out, nil
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}

// Fingerprint is a short blake2b hash of the token used for cache keys and
// audit rows, so the raw token is never stored.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:12])
}
