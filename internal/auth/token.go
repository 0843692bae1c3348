// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Token is a signed session token and its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issuer signs HS256 tokens carrying the principal's id, email, name and role.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(u domain.User) (Token, error) {
	const op = "auth.Issuer.Issue"

	now := i.now().UTC()
	exp := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"name":  u.Name,
		"role":  string(u.Role),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("%s:%w", op, err)
	}

	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Parse verifies raw and returns the principal it names. Any failure is
// reported as ErrInvalidToken.
func (i *Issuer) Parse(raw string) (domain.Principal, error) {
	const op = "auth.Issuer.Parse"

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return domain.Principal{}, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	roleStr, _ := claims["role"].(string)

	role, ok := domain.ParseRole(roleStr)
	if !ok || email == "" {
		return domain.Principal{}, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	return domain.Principal{UserID: id, Email: email, Name: name, Role: role}, nil
}
