package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/luntan/apperror"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{Username: " alice ", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsSuperuser)

	stored, err := f.store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"short username", RegisterInput{Username: "al", Email: "x@example.com", Password: "secret123"}, apperror.ErrValidation},
		{"bad email", RegisterInput{Username: "carol", Email: "nope", Password: "secret123"}, apperror.ErrValidation},
		{"short password", RegisterInput{Username: "carol", Email: "c@example.com", Password: "123"}, apperror.ErrValidation},
		{"long password", RegisterInput{Username: "carol", Email: "c@example.com", Password: strings.Repeat("p", 73)}, apperror.ErrValidation},
		{"taken email", RegisterInput{Username: "carol", Email: "alice@example.com", Password: "secret123"}, apperror.ErrDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Register(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")

	user, err := f.users.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, a.ID, user.ID)

	_, err = f.users.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = f.users.Authenticate(ctx, "ghost", "secret123")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.store.UpdateUser(ctx, a.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestUpdateProfileAndAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")
	f.register(t, "bob")

	u, err := f.users.UpdateProfile(ctx, a.ID, ProfileInput{Bio: strPtr("  gopher <b>fan</b> "), Location: strPtr("Berlin")})
	require.NoError(t, err)
	assert.Equal(t, "gopher fan", u.Bio)
	assert.Equal(t, "Berlin", u.Location)
	assert.Empty(t, u.Website)

	_, err = f.users.UpdateProfile(ctx, a.ID, ProfileInput{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, apperror.ErrDuplicateKey)

	u, err = f.users.UpdateProfile(ctx, a.ID, ProfileInput{Email: strPtr("alice@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	u, err = f.users.UpdateAvatar(ctx, a.ID, "/static/uploads/a.png")
	require.NoError(t, err)
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, "/static/uploads/a.png", *u.AvatarURL)

	_, err = f.users.UpdateAvatar(ctx, 404, "/x.png")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFollowersAndFollowing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")
	b := f.register(t, "bob")
	c := f.register(t, "carol")

	for _, follower := range []uint{b.ID, c.ID} {
		_, err := f.relations.ToggleFollow(ctx, follower, a.ID)
		require.NoError(t, err)
	}
	_, err := f.relations.ToggleFollow(ctx, a.ID, c.ID)
	require.NoError(t, err)

	followers, err := f.users.Followers(ctx, a.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)
	assert.False(t, followers[0].IsFollowing)
	assert.Equal(t, "carol", followers[1].Username)
	assert.True(t, followers[1].IsFollowing)

	following, err := f.users.Following(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, a.ID, following[0].ID)
	assert.Equal(t, int64(2), following[0].FollowersCount)

	_, err = f.users.Followers(ctx, 404, 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetUserAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")
	b := f.register(t, "bob")
	_, err := f.relations.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)

	byName, err := f.users.GetUserByUsername(ctx, "alice", b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)
	assert.True(t, byName.IsFollowing)

	byID, err := f.users.GetUser(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byID.FollowersCount)
	assert.False(t, byID.IsFollowing)

	_, err = f.users.GetUserByUsername(ctx, "ghost", 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := f.users.ListUsers(ctx, 0, 0, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEnsureSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.users.EnsureSuperuser(ctx, "admin", "123456", "admin@luntan.local")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsActive)

	_, err = f.users.Authenticate(ctx, "admin", "123456")
	require.NoError(t, err)

	// an existing account is promoted and its password reset
	bob := f.register(t, "bob")
	promoted, err := f.users.EnsureSuperuser(ctx, "bob", "newpass1", "ignored@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, promoted.ID)
	assert.True(t, promoted.IsSuperuser)
	assert.Equal(t, "bob@example.com", promoted.Email)
	_, err = f.users.Authenticate(ctx, "bob", "newpass1")
	require.NoError(t, err)

	_, err = f.users.EnsureSuperuser(ctx, "", "", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
