package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Claims identifies the user a session acts for.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// tokenClaims is the JWT payload issued by the backend.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// ParseToken reads session claims from token. With a key the HS256
// signature is verified; without one the claims are read as is, which is
// only suitable against a backend that verifies every request itself.
func ParseToken(token string, key []byte) (Claims, error) {
	return parseToken(token, key, time.Now)
}

func parseToken(token string, key []byte, now func() time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.EK(apperrors.KindUnauthorized, "error.session.token_required", "session token is required")
	}

	var parsed tokenClaims
	var err error
	if len(key) > 0 {
		_, err = jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
			return key, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		)
	} else {
		_, _, err = jwt.NewParser().ParseUnverified(token, &parsed)
	}
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return Claims{}, apperrors.E(apperrors.KindUnauthorized, "session token sub is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.E(apperrors.KindUnauthorized, "session token exp is required")
	}
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now().UTC()) {
		return Claims{}, apperrors.EK(apperrors.KindUnauthorized, "error.session.expired", "session token is expired")
	}
	return Claims{
		UserID:    userID,
		Role:      strings.TrimSpace(parsed.Role),
		ExpiresAt: exp,
	}, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.KindUnauthorized, "session token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.KindUnauthorized, "session token alg is invalid", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return apperrors.Wrap(apperrors.KindUnauthorized, "session token is malformed", err)
	default:
		return apperrors.Wrap(apperrors.KindUnauthorized, "session token is invalid", err)
	}
}
