package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is a directed edge: SubscriberID subscribes to ChannelID.
type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SubscriberID uuid.UUID `json:"subscriberId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_subscriber_channel"`
	ChannelID    uuid.UUID `json:"channelId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_subscriber_channel;index"`
	CreatedAt    time.Time `json:"createdAt"`

	Subscriber *User `json:"-" gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Channel    *User `json:"-" gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubscriberID == s.ChannelID {
		return ErrSelfSubscription
	}
	return nil
}
