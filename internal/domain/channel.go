package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChannelProfile is a user projected together with its subscription counts.
// It never carries secret fields.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"id"`
	Username                  string    `json:"username"`
	Fullname                  string    `json:"fullname"`
	Email                     string    `json:"email"`
	AvatarURL                 string    `json:"avatar"`
	CoverImageURL             string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscriberCount"`
	ChannelsSubscribedToCount int64     `json:"channelsubscribedtocount"`
	IsSubscribed              bool      `json:"isSubscribedByViewer"`
}

// VideoOwner is the public slice of a user shown next to a video.
type VideoOwner struct {
	ID        uuid.UUID `json:"id"`
	Fullname  string    `json:"fullname"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
}

type WatchHistoryEntry struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	ThumbnailURL string      `json:"thumbnail"`
	Duration     float64     `json:"duration"`
	Views        int64       `json:"views"`
	CreatedAt    time.Time   `json:"createdAt"`
	Owner        *VideoOwner `json:"owner"`
}

// NewWatchHistoryEntry flattens a video and its (optional) owner.
func NewWatchHistoryEntry(v *Video) WatchHistoryEntry {
	entry := WatchHistoryEntry{
		ID:           v.ID,
		Title:        v.Title,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		Views:        v.Views,
		CreatedAt:    v.CreatedAt,
	}
	if v.Owner != nil {
		entry.Owner = &VideoOwner{
			ID:        v.Owner.ID,
			Fullname:  v.Owner.Fullname,
			Username:  v.Owner.Username,
			AvatarURL: v.Owner.AvatarURL,
		}
	}
	return entry
}
