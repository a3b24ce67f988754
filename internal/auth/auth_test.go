package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"acceptable", "correcthorse1", ""},
		{"too short", "ab1", "Password must be at least 8 characters."},
		{"too long", strings.Repeat("a1", 33), "Password cannot exceed 64 characters."},
		{"no digit", "onlyletters", "Password must contain at least one digit."},
		{"no letter", "12345678", "Password must contain at least one letter."},
		{"contains space", "has space1", "Password cannot contain spaces."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"plain", "alice", ""},
		{"with digits", "alice42", ""},
		{"with separator", "alice_b-c", ""},
		{"too short", "ab", "Username must be at least 3 characters."},
		{"too long", strings.Repeat("a", 33), "Username cannot exceed 32 characters."},
		{"starts with digit", "1alice", "Username must start with a letter."},
		{"starts with separator", "_alice", "Username must start with a letter."},
		{"consecutive separators", "alice__b", "Username cannot contain consecutive separators."},
		{"trailing separator", "alice_", "Username must end with a letter or digit."},
		{"illegal rune", "alice!", `Username cannot contain '!'.`},
		{"inner space", "ali ce", `Username cannot contain ' '.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUsername(tt.username))
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)

	ok, err := PasswordMatches(hash, "hunter2hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PasswordMatches(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSession(t *testing.T) {
	session := NewSession("alice", time.Hour)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.ID)
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, session.ID, session.Token)

	assert.False(t, session.Expired(session.CreatedAt.Add(30*time.Minute)))
	assert.True(t, session.Expired(session.CreatedAt.Add(2*time.Hour)))
}
