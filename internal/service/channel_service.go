package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelService answers the relationship queries: channel profiles,
// subscriptions and watch history.
type ChannelService struct {
	userRepo         repository.UserRepository
	channelRepo      repository.ChannelRepository
	videoRepo        repository.VideoRepository
	subscriptionRepo repository.SubscriptionRepository
	logger           *slog.Logger
}

func NewChannelService(
	userRepo repository.UserRepository,
	channelRepo repository.ChannelRepository,
	videoRepo repository.VideoRepository,
	subscriptionRepo repository.SubscriptionRepository,
	logger *slog.Logger,
) *ChannelService {
	return &ChannelService{
		userRepo:         userRepo,
		channelRepo:      channelRepo,
		videoRepo:        videoRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger.With("component", "channel"),
	}
}

// GetChannelProfile returns the channel with its counts. IsSubscribed is
// computed for viewerID; pass uuid.Nil for an anonymous viewer.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error) {
	if domain.NormalizeHandle(username) == "" {
		return nil, ErrUsernameMissing
	}

	profile, err := s.channelRepo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("load channel profile: %w", err)
	}
	return profile, nil
}

// GetWatchHistory returns the user's watched videos in history order.
// Videos that no longer exist are skipped.
func (s *ChannelService) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]domain.WatchHistoryEntry, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	entries := make([]domain.WatchHistoryEntry, 0, len(user.WatchHistory))
	if len(user.WatchHistory) == 0 {
		return entries, nil
	}

	videos, err := s.videoRepo.GetByIDsWithOwner(ctx, user.WatchHistory)
	if err != nil {
		return nil, fmt.Errorf("load history videos: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	for _, id := range user.WatchHistory {
		if v, ok := byID[id]; ok {
			entries = append(entries, domain.NewWatchHistoryEntry(v))
		}
	}
	return entries, nil
}

// RecordView moves the video to the end of the user's history, bumps its
// view counter and returns the updated history.
func (s *ChannelService) RecordView(ctx context.Context, userID, videoID uuid.UUID) ([]domain.WatchHistoryEntry, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("load video: %w", err)
	}

	if err := s.userRepo.AppendWatchHistory(ctx, userID, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("append watch history: %w", err)
	}
	if err := s.videoRepo.IncrementViews(ctx, videoID); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}

	return s.GetWatchHistory(ctx, userID)
}

// ToggleSubscription subscribes to or unsubscribes from a channel and reports
// whether the subscriber is subscribed afterwards.
func (s *ChannelService) ToggleSubscription(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrChannelNotFound
		}
		return false, fmt.Errorf("load channel: %w", err)
	}

	removed, err := s.subscriptionRepo.Delete(ctx, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("unsubscribe: %w", err)
	}
	if removed {
		return false, nil
	}

	sub := &domain.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		// a concurrent toggle already created the edge
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, fmt.Errorf("subscribe: %w", err)
	}
	return true, nil
}
