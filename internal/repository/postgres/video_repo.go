package postgres

import (
	"context"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *videoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	var video domain.Video
	err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDsWithOwner returns the existing videos among ids, in no particular
// order, each with its owner preloaded. Unknown ids are skipped.
func (r *videoRepository) GetByIDsWithOwner(ctx context.Context, ids []uuid.UUID) ([]*domain.Video, error) {
	videos := []*domain.Video{}
	if len(ids) == 0 {
		return videos, nil
	}

	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id IN ?", ids).
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
