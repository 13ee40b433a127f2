package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/pkg/jwt"
)

func registerReq(email, role string) *model.User {
	return &model.User{
		Email:    email,
		FullName: "Test User",
		Company:  "Acme Trading",
		Role:     role,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users)

	created, err := svc.Register(nil, registerReq("trader@example.com", model.RoleRetailer), "secret123")
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "secret123", created.Password, "password must be stored hashed")

	token, user, err := svc.Login("trader@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotNil(t, user.LastSeenAt)

	claims, err := jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, model.RoleRetailer, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users)
	_, err := svc.Register(nil, registerReq("trader@example.com", model.RoleRetailer), "secret123")
	require.NoError(t, err)

	var ae *AuthorizationError
	_, _, err = svc.Login("trader@example.com", "wrong")
	require.ErrorAs(t, err, &ae)

	_, _, err = svc.Login("nobody@example.com", "secret123")
	require.ErrorAs(t, err, &ae)

	var ve *ValidationError
	_, _, err = svc.Login("", "")
	require.ErrorAs(t, err, &ve)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users)
	created, err := svc.Register(nil, registerReq("trader@example.com", model.RoleRetailer), "secret123")
	require.NoError(t, err)

	created.IsActive = false
	require.NoError(t, users.Update(created))

	var ae *AuthorizationError
	_, _, err = svc.Login("trader@example.com", "secret123")
	require.ErrorAs(t, err, &ae)
}

func TestRegisterGuards(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users)

	var ve *ValidationError
	_, err := svc.Register(nil, registerReq("short@example.com", model.RoleRetailer), "abc")
	require.ErrorAs(t, err, &ve)

	_, err = svc.Register(nil, registerReq("bad-email", model.RoleRetailer), "secret123")
	require.ErrorAs(t, err, &ve)

	// Admin accounts only via an existing admin.
	var ae *AuthorizationError
	_, err = svc.Register(nil, registerReq("boss@example.com", model.RoleAdmin), "secret123")
	require.ErrorAs(t, err, &ae)

	admin := &Actor{ID: uuid.New(), Role: model.RoleAdmin}
	created, err := svc.Register(admin, registerReq("boss@example.com", model.RoleAdmin), "secret123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, created.Role)

	// Duplicate email.
	_, err = svc.Register(nil, registerReq("boss@example.com", model.RoleRetailer), "secret123")
	require.ErrorAs(t, err, &ve)
}
