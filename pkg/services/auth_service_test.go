package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/testhelpers"
	"github.com/propertyconnect/engine/pkg/validation"
)

type authFixture struct {
	users  *memUserRepo
	buyers *memBuyerRepo
	svc    AuthService
}

func newAuthFixture() *authFixture {
	users := newMemUserRepo()
	buyers := newMemBuyerRepo()
	return &authFixture{
		users:  users,
		buyers: buyers,
		svc:    NewAuthService(users, buyers, testhelpers.NewTokenService(), zap.NewNop()),
	}
}

func buyerRegistration(email string) *validation.RegisterRequest {
	return &validation.RegisterRequest{
		Email:     email,
		Password:  "password123",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      models.RoleBuyer,
	}
}

func TestAuthService_Register_BuyerGetsProfile(t *testing.T) {
	f := newAuthFixture()

	req := buyerRegistration("jane@example.com")
	req.PreferredAreas = []string{"Downtown"}

	user, token, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, user.Buyer)
	assert.Equal(t, user.ID, user.Buyer.UserID)
	assert.Equal(t, []string{"Downtown"}, user.Buyer.PreferredAreas)
	assert.NotEqual(t, "password123", user.PasswordHash)

	stored, err := f.buyers.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Buyer.ID, stored.ID)

	claims, err := testhelpers.NewTokenService().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, models.RoleBuyer, claims.Role)
}

func TestAuthService_Register_AgentHasNoBuyerProfile(t *testing.T) {
	f := newAuthFixture()

	req := buyerRegistration("bob@example.com")
	req.Role = models.RoleAgent

	user, _, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, user.Buyer)

	_, err = f.buyers.GetByUserID(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthService_Register_NilSlicesBecomeEmpty(t *testing.T) {
	f := newAuthFixture()

	user, _, err := f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	require.NoError(t, err)
	require.NotNil(t, user.Buyer)
	assert.NotNil(t, user.Buyer.PreferredAreas)
	assert.NotNil(t, user.Buyer.PropertyTypes)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	_, _, err := f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	require.NoError(t, err)

	_, _, err = f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	_, _, err := f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	require.NoError(t, err)

	user, token, err := f.svc.Login(context.Background(), &validation.LoginRequest{
		Email:    "jane@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	_, _, err := f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	require.NoError(t, err)

	_, _, err = f.svc.Login(context.Background(), &validation.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailIsOpaque(t *testing.T) {
	f := newAuthFixture()

	// Unknown accounts fail the same way wrong passwords do.
	_, _, err := f.svc.Login(context.Background(), &validation.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	user, _, err := f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), user.ID, &validation.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "hunter2hunter2",
	})
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "hunter2hunter2"))
	assert.False(t, auth.CheckPassword(stored.PasswordHash, "password123"))
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	f := newAuthFixture()
	user, _, err := f.svc.Register(context.Background(), buyerRegistration("jane@example.com"))
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), user.ID, &validation.ChangePasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "hunter2hunter2",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
