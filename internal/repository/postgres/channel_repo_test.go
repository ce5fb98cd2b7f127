package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/repository/postgres"
	"github.com/dom/videotube-identity/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestChannelRepository_GetChannelProfile(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewChannelRepository(testDB.DB)
	ctx := context.Background()

	channel, _ := testutil.NewUserBuilder().
		WithUsername("thechannel").
		WithCoverImage("https://assets.test/cover.png").
		Build(t, testDB.DB)
	fan1, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	fan2, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	fan3, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.Subscribe(t, testDB.DB, fan1, channel)
	testutil.Subscribe(t, testDB.DB, fan2, channel)
	testutil.Subscribe(t, testDB.DB, fan3, channel)
	testutil.Subscribe(t, testDB.DB, channel, other)

	tests := []struct {
		name           string
		username       string
		viewer         uuid.UUID
		wantSubscribed bool
		wantErr        error
	}{
		{name: "subscribed viewer", username: "thechannel", viewer: fan1.ID, wantSubscribed: true},
		{name: "unsubscribed viewer", username: "thechannel", viewer: stranger.ID},
		{name: "anonymous viewer", username: "thechannel", viewer: uuid.Nil},
		{name: "case folded username", username: " TheChannel ", viewer: fan2.ID, wantSubscribed: true},
		{name: "unknown channel", username: "nobody", viewer: fan1.ID, wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := repo.GetChannelProfile(ctx, tt.username, tt.viewer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, channel.ID, profile.ID)
			assert.Equal(t, "thechannel", profile.Username)
			assert.Equal(t, channel.Email, profile.Email)
			assert.Equal(t, channel.AvatarURL, profile.AvatarURL)
			assert.Equal(t, "https://assets.test/cover.png", profile.CoverImageURL)
			assert.Equal(t, int64(3), profile.SubscribersCount)
			assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
			assert.Equal(t, tt.wantSubscribed, profile.IsSubscribed)
		})
	}

	t.Run("channel without edges", func(t *testing.T) {
		profile, err := repo.GetChannelProfile(ctx, stranger.Username, channel.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), profile.SubscribersCount)
		assert.Equal(t, int64(0), profile.ChannelsSubscribedToCount)
		assert.False(t, profile.IsSubscribed)
	})
}

func TestSubscriptionRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(testDB.DB)
	ctx := context.Background()

	fan, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	channel, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	exists, err := repo.Exists(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &domain.Subscription{SubscriberID: fan.ID, ChannelID: channel.ID}))

	err = repo.Create(ctx, &domain.Subscription{SubscriberID: fan.ID, ChannelID: channel.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = repo.Create(ctx, &domain.Subscription{SubscriberID: fan.ID, ChannelID: fan.ID})
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)

	exists, err = repo.Exists(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
