package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/luntan/store"
)

func TestSeeder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeder := NewSeeder(f.store, f.users, f.posts, f.relations, zap.NewNop())

	res, err := seeder.Seed(ctx, SeedOptions{Users: 3, PostsPerUser: 2, RandSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 3, Posts: 6, Follows: 3, Likes: 6}, res)

	st, err := f.stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.UserCount)
	assert.Equal(t, int64(6), st.PostCount)

	users, err := f.users.ListUsers(ctx, 0, 0, 0)
	require.NoError(t, err)
	for _, u := range users {
		assert.Equal(t, int64(1), u.FollowersCount, u.Username)
		assert.Equal(t, int64(1), u.FollowingCount, u.Username)
		_, err := f.users.Authenticate(ctx, u.Username, DemoPassword)
		assert.NoError(t, err)
	}

	follows, err := f.store.CountByActors(ctx, store.RelationFollow, []uint{users[0].ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{users[0].ID: 1}, follows)

	// a second run leaves existing data alone
	again, err := seeder.Seed(ctx, SeedOptions{Users: 3, PostsPerUser: 2})
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestDemoUsername(t *testing.T) {
	assert.Equal(t, "anna1", demoUsername("Anna", 0))
	assert.Equal(t, "zouser5", demoUsername("Zoë", 4))
	assert.Equal(t, "jouser3", demoUsername("Jo", 2))
}
