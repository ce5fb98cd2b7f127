package postgres

import (
	"context"
	"time"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error) {
	var session domain.UserSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UserSession{}, "user_id = ?", userID).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.UserSession{}, "expires_at <= ?", now)
	return res.RowsAffected, res.Error
}

// Rotate deletes the old session only if it still carries oldHash, then stores
// next. Of two concurrent rotations with the same token at most one succeeds.
func (r *sessionRepository) Rotate(ctx context.Context, oldID, userID uuid.UUID, oldHash string, next *domain.UserSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.UserSession{},
			"id = ? AND user_id = ? AND refresh_token_hash = ?", oldID, userID, oldHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrSessionNotFound
		}
		return tx.Create(next).Error
	})
}
