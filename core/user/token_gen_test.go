package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(t *testing.T) User {
	t.Helper()
	usr := User{
		ID:       "5f7c0a2e-6f43-4bfa-9a1d-3a0a9e2a9a01",
		Name:     "Test User",
		Username: "testuser",
		Email:    "testuser@test.cd",
	}
	require.NoError(t, usr.SetPassword("LePass123!"))
	return usr
}

func TestMakeToken_roundTrip(t *testing.T) {
	usr := testUser(t)

	token, err := MakeToken(usr)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.NoError(t, verifyToken(usr, token))
}

func TestVerifyToken_invalid(t *testing.T) {
	usr := testUser(t)

	token, err := MakeToken(usr)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		usr   User
		want  error
	}{
		{name: "empty", token: "", usr: usr, want: errInvalidToken},
		{name: "garbage", token: "lol", usr: usr, want: errInvalidToken},
		{name: "tampered", token: token + "x", usr: usr, want: errInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verifyToken(tt.usr, tt.token))
		})
	}
}

func TestVerifyToken_invalidatedByUse(t *testing.T) {
	usr := testUser(t)

	token, err := MakeToken(usr)
	require.NoError(t, err)

	// changing the password invalidates outstanding tokens
	require.NoError(t, usr.SetPassword("NewPass123!"))
	assert.Equal(t, errInvalidToken, verifyToken(usr, token))
}

func TestVerifyToken_expired(t *testing.T) {
	usr := testUser(t)

	NowFunc = func() time.Time { return time.Now().AddDate(0, 0, -30) }
	defer func() { NowFunc = time.Now }()

	token, err := MakeToken(usr)
	require.NoError(t, err)
	assert.Equal(t, errTokenExpired, verifyToken(usr, token))
}
