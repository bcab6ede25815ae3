package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// context key
type ctxKey string

const CtxClaimsKey ctxKey = "claims"

// DefaultTokenTTL matches the one-day lifetime the front end expects.
const DefaultTokenTTL = 24 * time.Hour

// UserClaims is the token payload: {_id, email, role} plus the registered
// exp/iat claims.
type UserClaims struct {
	UserID string `json:"_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseTTL accepts "15m", "1h", "20s", "1d" or a bare number of minutes.
// An empty string yields DefaultTokenTTL.
func ParseTTL(ttlStr string) (time.Duration, error) {
	ttlStr = strings.TrimSpace(ttlStr)
	if ttlStr == "" {
		return DefaultTokenTTL, nil
	}

	if days, ok := strings.CutSuffix(ttlStr, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	if strings.HasSuffix(ttlStr, "m") ||
		strings.HasSuffix(ttlStr, "h") ||
		strings.HasSuffix(ttlStr, "s") {
		return time.ParseDuration(ttlStr)
	}

	// fallback: minutes
	min, err := strconv.Atoi(ttlStr)
	if err != nil {
		return 0, err
	}
	return time.Duration(min) * time.Minute, nil
}

// GenerateToken signs claims with HS256, stamping iat and exp=now+ttl.
// It returns the token and its expiry.
func GenerateToken(userID, email, role, secret string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("secret not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	expTime := now.Add(ttl)

	claims := UserClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expTime, nil
}

// VerifyToken checks the signature and expiry and returns the claims.
func VerifyToken(tokenStr, secret string) (*UserClaims, error) {
	if secret == "" {
		return nil, errors.New("secret not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)

	var claims UserClaims

	_, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}

	return &claims, nil
}
