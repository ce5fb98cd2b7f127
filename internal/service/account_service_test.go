package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/videotube-identity/internal/service"
	"github.com/dom/videotube-identity/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAccountService_UpdateAccount(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	_, services, _ := testutil.NewTestServices(t, testDB.DB, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithFullname("Before").Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name         string
		userID       uuid.UUID
		input        service.UpdateAccountInput
		wantErr      error
		wantFullname string
		wantEmail    string
	}{
		{
			name:         "fullname only",
			userID:       user.ID,
			input:        service.UpdateAccountInput{Fullname: strPtr("  After ")},
			wantFullname: "After",
			wantEmail:    user.Email,
		},
		{
			name:         "email folded",
			userID:       user.ID,
			input:        service.UpdateAccountInput{Email: strPtr(" Changed@Example.com ")},
			wantFullname: "After",
			wantEmail:    "changed@example.com",
		},
		{
			name:    "nothing to update",
			userID:  user.ID,
			input:   service.UpdateAccountInput{Fullname: strPtr("  "), Email: nil},
			wantErr: service.ErrNoFieldsToUpdate,
		},
		{
			name:    "email in use",
			userID:  user.ID,
			input:   service.UpdateAccountInput{Email: strPtr(other.Email)},
			wantErr: service.ErrEmailTaken,
		},
		{
			name:    "unknown user",
			userID:  uuid.New(),
			input:   service.UpdateAccountInput{Fullname: strPtr("x")},
			wantErr: service.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.Account.UpdateAccount(ctx, tt.userID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFullname, got.Fullname)
			assert.Equal(t, tt.wantEmail, got.Email)
			assert.Equal(t, user.PasswordHash, got.PasswordHash)
		})
	}
}

func TestAccountService_ReplaceImages(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	repos, services, store := testutil.NewTestServices(t, testDB.DB, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("avatar", func(t *testing.T) {
		file := testutil.TempUpload(t, "new-avatar.png", "pixels")
		got, err := services.Account.UpdateAvatar(ctx, user.ID, file)
		require.NoError(t, err)
		assert.Contains(t, got.AvatarURL, "new-avatar.png")
		assert.True(t, fileGone(t, file))
	})

	t.Run("cover image", func(t *testing.T) {
		file := testutil.TempUpload(t, "cover.png", "pixels")
		got, err := services.Account.UpdateCoverImage(ctx, user.ID, file)
		require.NoError(t, err)
		assert.Contains(t, got.CoverImageURL, "cover.png")
	})

	t.Run("missing files", func(t *testing.T) {
		_, err := services.Account.UpdateAvatar(ctx, user.ID, nil)
		assert.ErrorIs(t, err, service.ErrAvatarRequired)

		_, err = services.Account.UpdateCoverImage(ctx, user.ID, nil)
		assert.ErrorIs(t, err, service.ErrCoverImageRequired)
	})

	t.Run("upload failure leaves profile unchanged", func(t *testing.T) {
		before, err := repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)

		store.Err = errors.New("s3 unavailable")
		defer func() { store.Err = nil }()

		file := testutil.TempUpload(t, "broken.png", "pixels")
		_, err = services.Account.UpdateAvatar(ctx, user.ID, file)
		assert.ErrorIs(t, err, service.ErrUploadFailed)
		assert.ErrorIs(t, err, service.ErrUpstream)
		assert.True(t, fileGone(t, file))

		after, err := repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, before.AvatarURL, after.AvatarURL)
	})

}
