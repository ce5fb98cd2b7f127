package postgres

import (
	"context"
	"time"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", domain.NormalizeHandle(username)).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsernameOrEmail matches on whichever of username and email is non-empty.
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	q, ok := r.identityQuery(ctx, username, email)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var user domain.User
	if err := q.Order("created_at").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	q, ok := r.identityQuery(ctx, username, email)
	if !ok {
		return false, nil
	}

	var count int64
	if err := q.Model(&domain.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) identityQuery(ctx context.Context, username, email string) (*gorm.DB, bool) {
	username = domain.NormalizeHandle(username)
	email = domain.NormalizeHandle(email)

	q := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		return q.Where("username = ? OR email = ?", username, email), true
	case username != "":
		return q.Where("username = ?", username), true
	case email != "":
		return q.Where("email = ?", email), true
	default:
		return nil, false
	}
}

// Update saves every column and runs the save hooks, so a staged password is hashed.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdatePassword hashes the staged password and writes only the hash, leaving
// concurrently updated columns such as watch_history untouched.
func (r *userRepository) UpdatePassword(ctx context.Context, user *domain.User) error {
	if err := user.HashPendingPassword(); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		UpdateColumns(map[string]any{"password_hash": user.PasswordHash, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFields patches the given columns and returns the stored row.
func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AppendWatchHistory moves videoID to the end of the user's history, dropping
// any earlier occurrence.
func (r *userRepository) AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error {
	id := videoID.String()
	res := r.db.WithContext(ctx).Exec(`
		UPDATE users SET
			watch_history = (
				SELECT COALESCE(jsonb_agg(h.e ORDER BY h.i), '[]'::jsonb)
				FROM jsonb_array_elements(CASE WHEN jsonb_typeof(users.watch_history) = 'array'
					THEN users.watch_history ELSE '[]'::jsonb END) WITH ORDINALITY AS h(e, i)
				WHERE h.e <> to_jsonb(?::text)
			) || jsonb_build_array(?::text),
			updated_at = NOW()
		WHERE id = ?`, id, id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
