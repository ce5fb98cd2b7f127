package postgres

import (
	"context"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *channelRepository {
	return &channelRepository{db: db}
}

// Subscriber and subscription counts are correlated sub-selects over the
// subscriptions edge table. is_subscribed is false for a nil viewer since no
// user carries the nil id.
const channelProfileQuery = `
SELECT
	u.id,
	u.username,
	u.fullname,
	u.email,
	u.avatar_url,
	u.cover_image_url,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
	EXISTS (
		SELECT 1 FROM subscriptions s
		WHERE s.channel_id = u.id AND s.subscriber_id = ?
	) AS is_subscribed
FROM users u
WHERE u.username = ?
LIMIT 1`

func (r *channelRepository) GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error) {
	var profile domain.ChannelProfile
	res := r.db.WithContext(ctx).
		Raw(channelProfileQuery, viewerID, domain.NormalizeHandle(username)).
		Scan(&profile)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}
