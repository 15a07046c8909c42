package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

var (
	tokenKey = []byte("0123456789abcdef0123456789abcdef")
	tokenNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

func signToken(t *testing.T, method jwt.SigningMethod, key []byte, claims tokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func claimsFor(sub string, role string, exp time.Time) tokenClaims {
	return tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}
}

func TestParseTokenVerified(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.SigningMethodHS256, tokenKey, claimsFor("user-1", "admin", tokenNow.Add(time.Hour)))
	got, err := parseToken(token, tokenKey, func() time.Time { return tokenNow })
	if err != nil {
		t.Fatalf("parseToken() error = %v", err)
	}
	want := Claims{UserID: "user-1", Role: "admin", ExpiresAt: tokenNow.Add(time.Hour)}
	if got != want {
		t.Fatalf("parseToken() = %+v, want %+v", got, want)
	}
}

func TestParseTokenUnverified(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.SigningMethodHS256, []byte("some other key"), claimsFor("user-2", "investor", tokenNow.Add(time.Minute)))
	got, err := parseToken(token, nil, func() time.Time { return tokenNow })
	if err != nil {
		t.Fatalf("parseToken() error = %v", err)
	}
	if got.UserID != "user-2" || got.Role != "investor" {
		t.Fatalf("parseToken() = %+v", got)
	}
}

func TestParseTokenRejects(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return tokenNow }
	tests := []struct {
		name  string
		token string
		key   []byte
	}{
		{name: "empty", token: " ", key: tokenKey},
		{name: "garbage", token: "not.a.token", key: tokenKey},
		{name: "wrong key", token: signToken(t, jwt.SigningMethodHS256, []byte("wrong"), claimsFor("u", "", tokenNow.Add(time.Hour))), key: tokenKey},
		{name: "wrong alg", token: signToken(t, jwt.SigningMethodHS512, tokenKey, claimsFor("u", "", tokenNow.Add(time.Hour))), key: tokenKey},
		{name: "missing sub", token: signToken(t, jwt.SigningMethodHS256, tokenKey, claimsFor("", "", tokenNow.Add(time.Hour))), key: tokenKey},
		{name: "missing exp", token: signToken(t, jwt.SigningMethodHS256, tokenKey, tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}), key: tokenKey},
		{name: "expired unverified", token: signToken(t, jwt.SigningMethodHS256, tokenKey, claimsFor("u", "", tokenNow)), key: nil},
	}
	for _, tc := range tests {
		if _, err := parseToken(tc.token, tc.key, now); !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("%s: parseToken() error = %v, want unauthorized", tc.name, err)
		}
	}
}

func TestParseTokenExpiredKey(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.SigningMethodHS256, tokenKey, claimsFor("u", "", tokenNow.Add(-time.Second)))
	_, err := parseToken(token, tokenKey, func() time.Time { return tokenNow })
	if got := apperrors.LocalizationKey(err); got != "error.session.expired" {
		t.Fatalf("LocalizationKey() = %q, want error.session.expired", got)
	}
}
