package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmtrack/internal/errs"
	"filmtrack/internal/services"
	"filmtrack/internal/storage/storagetest"
)

func TestGetUserProfile(t *testing.T) {
	f := newFixture(t)
	alice := storagetest.CreateUser(t, f.db, "alice")

	got, err := f.users.GetUserProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)

	_, err = f.users.GetUserProfile(context.Background(), 9999)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	assert.Equal(t, "User not found", errs.Message(err, ""))
}

func TestUpdateUserProfile(t *testing.T) {
	f := newFixture(t)
	alice := storagetest.CreateUser(t, f.db, "alice")
	bob := storagetest.CreateUser(t, f.db, "bob")
	ctx := context.Background()

	_, err := f.users.UpdateUserProfile(ctx, alice.ID, bob.ID, services.UpdateUserInput{Name: ptr("mallory")})
	assert.ErrorIs(t, err, services.ErrProfileForbidden)
	assert.Equal(t, "Forbidden: You can only update your own profile", errs.Message(err, ""))

	var in services.UpdateUserInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":" Alice L. ","bio":"cinephile"}`), &in))
	got, err := f.users.UpdateUserProfile(ctx, alice.ID, alice.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", got.Name)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "cinephile", *got.Bio)
	assert.Equal(t, alice.Email, got.Email)

	in = services.UpdateUserInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"bio":null}`), &in))
	got, err = f.users.UpdateUserProfile(ctx, alice.ID, alice.ID, in)
	require.NoError(t, err)
	assert.Nil(t, got.Bio)
	assert.Equal(t, "Alice L.", got.Name)
}

func TestUpdateUserProfileValidation(t *testing.T) {
	f := newFixture(t)
	alice := storagetest.CreateUser(t, f.db, "alice")
	bob := storagetest.CreateUser(t, f.db, "bob")
	ctx := context.Background()

	_, err := f.users.UpdateUserProfile(ctx, alice.ID, alice.ID, services.UpdateUserInput{Name: ptr(" ")})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = f.users.UpdateUserProfile(ctx, alice.ID, alice.ID, services.UpdateUserInput{Email: ptr("not-an-email")})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "email must be a valid email address", errs.Message(err, ""))

	_, err = f.users.UpdateUserProfile(ctx, alice.ID, alice.ID, services.UpdateUserInput{Email: ptr(bob.Email)})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.Equal(t, errs.KindDuplicate, errs.KindOf(err))
}
