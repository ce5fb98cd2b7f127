package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by Rotate when the presented session no longer
// matches the stored one (already rotated, logged out, or replaced by a new login).
var ErrSessionNotFound = errors.New("session not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.User, error)
	UpdatePassword(ctx context.Context, user *domain.User) error
	AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Rotate(ctx context.Context, oldID, userID uuid.UUID, oldHash string, next *domain.UserSession) error
}

type ChannelRepository interface {
	GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	GetByIDsWithOwner(ctx context.Context, ids []uuid.UUID) ([]*domain.Video, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	Exists(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
}

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Channel      ChannelRepository
	Video        VideoRepository
	Subscription SubscriptionRepository
}
