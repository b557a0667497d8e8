package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	t.Run("Valid user", func(t *testing.T) {
		u, err := NewUser("id-1", "mario_rossi", " Mario.Rossi@Example.COM ")

		assert.NoError(t, err)
		assert.Equal(t, "mario_rossi", u.Username)
		assert.Equal(t, "mario.rossi@example.com", u.Email, "email is normalized to lowercase")
	})

	t.Run("Invalid username", func(t *testing.T) {
		for _, username := range []string{"ab", "has space", "dots.not.ok", ""} {
			_, err := NewUser("id-1", username, "mario@example.com")
			assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", username)
		}
	})

	t.Run("Invalid email", func(t *testing.T) {
		_, err := NewUser("id-1", "mario", "not-an-email")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestUser_Password(t *testing.T) {
	u, err := NewUser("id-1", "mario", "mario@example.com")
	assert.NoError(t, err)

	t.Run("Too short", func(t *testing.T) {
		assert.ErrorIs(t, u.SetPassword("short"), ErrPasswordTooShort)
	})

	t.Run("Hash round trip", func(t *testing.T) {
		assert.NoError(t, u.SetPassword("correct-horse-battery"))
		assert.NotEmpty(t, u.PasswordHash)
		assert.NotContains(t, u.PasswordHash, "correct-horse")

		assert.NoError(t, u.CheckPassword("correct-horse-battery"))
		assert.Error(t, u.CheckPassword("wrong-password"))
	})
}
