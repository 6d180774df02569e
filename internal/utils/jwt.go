package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"  // sentinel error for verification failures
	"strconv" // parsing numeric subject claims encoded as strings
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by VerifyToken when a token is malformed, its
// signature does not match, or it has expired. Verification deliberately does
// not distinguish between these cases so that callers cannot leak which one
// occurred.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload shared by access and refresh tokens. The two
// token kinds differ only in their expiry policy; VerifyToken accepts either
// and callers are responsible for kind-appropriate usage.
type Claims struct {
	UserID uint64 // subject user id ("sub")
	Email  string // user email ("email")
	Role   string // single role name embedded at issue time ("role")
}

// Token represents a signed JWT along with its expiry. The Token field
// contains the serialized JWT string and Exp stores the UTC expiration time.
type Token struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs a short-lived HS256 JWT for a user. It
// takes the signing secret, the claims to embed, and a TTL in minutes. The
// JWT includes the subject (sub), email, role, expiration (exp) and issued
// at (iat) claims.
func NewAccessToken(secret string, c Claims, ttlMin int) (Token, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	return signToken(secret, c, exp)
}

// NewRefreshToken builds and signs a long-lived HS256 JWT carrying the same
// payload shape as an access token. The ttlDays parameter controls how many
// days the refresh token is valid. There is no server-side denylist: once
// issued, a token is valid until natural expiry and logout is a pure
// client-side discard.
func NewRefreshToken(secret string, c Claims, ttlDays int) (Token, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	return signToken(secret, c, exp)
}

// signToken signs the claims with the provided secret and expiry. Using
// MapClaims keeps the wire format identical for both token kinds.
func signToken(secret string, c Claims, exp time.Time) (Token, error) {
	claims := jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"role":  c.Role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a signed token and returns its claims.
// It fails with ErrInvalidToken when the signature does not match, the token
// is malformed, the signing algorithm is not HMAC, or the expiry has passed.
// Token kind is not special-cased here; an access token presented where a
// refresh token is expected will verify successfully.
func VerifyToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with a different algorithm family.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	// JWT numbers decode as float64; some encoders emit numeric strings.
	switch sub := mc["sub"].(type) {
	case float64:
		c.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		c.UserID = n
	default:
		return Claims{}, ErrInvalidToken
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	return c, nil
}
