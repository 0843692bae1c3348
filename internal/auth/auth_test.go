package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kirinyoku/tour-go/internal/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:    uuid.New(),
		Name:  "Alice Johnson",
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
}

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	u := testUser()

	tok, err := iss.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	p, err := iss.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, "Alice Johnson", p.Name)
	assert.Equal(t, domain.RoleUser, p.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewIssuer("secret", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := iss.Issue(testUser())
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": "x@example.com",
		"role":  "root",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, h.Verify(hash, "password123"))
	assert.False(t, h.Verify(hash, "password124"))
	assert.False(t, h.Verify("not-a-hash", "password123"))
}
