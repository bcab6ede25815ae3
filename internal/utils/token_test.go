package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	tok, exp, err := GenerateToken("u-1", "ada@example.com", "DEFAULT", "secret", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if d := time.Until(exp); d < 23*time.Hour || d > 24*time.Hour {
		t.Fatalf("default expiry %v is not one day out", d)
	}

	claims, err := VerifyToken(tok, "secret")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "ada@example.com" || claims.Role != "DEFAULT" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	good, _, err := GenerateToken("u-1", "ada@example.com", "DEFAULT", "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyToken(good, "other-secret"); err == nil {
		t.Error("accepted token signed with another secret")
	}
	if _, err := VerifyToken("not-a-token", "secret"); err == nil {
		t.Error("accepted garbage")
	}
	if _, err := VerifyToken(good, ""); err == nil {
		t.Error("accepted with empty secret")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(signed, "secret"); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expired token: err = %v, want ErrTokenExpired", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{UserID: "u-1"})
	signed, err = noExp.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(signed, "secret"); err == nil {
		t.Error("accepted token without exp")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodHS512, UserClaims{
		UserID:           "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err = none.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(signed, "secret"); err == nil {
		t.Error("accepted HS512 token")
	}
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"":    24 * time.Hour,
		"1d":  24 * time.Hour,
		"2h":  2 * time.Hour,
		"15m": 15 * time.Minute,
		"30s": 30 * time.Second,
		"45":  45 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseTTL(in)
		if err != nil {
			t.Errorf("ParseTTL(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseTTL(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTTL("soon"); err == nil {
		t.Error("ParseTTL(\"soon\") should fail")
	}
}
