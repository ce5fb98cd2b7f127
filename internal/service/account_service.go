package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/repository"
	"github.com/dom/videotube-identity/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService updates profile fields and images of the signed-in user.
type AccountService struct {
	userRepo repository.UserRepository
	store    storage.Store
	logger   *slog.Logger
}

func NewAccountService(userRepo repository.UserRepository, store storage.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		store:    store,
		logger:   logger.With("component", "account"),
	}
}

// UpdateAccountInput fields are optional; nil or blank means unchanged.
type UpdateAccountInput struct {
	Fullname *string
	Email    *string
}

func (s *AccountService) UpdateAccount(ctx context.Context, userID uuid.UUID, input UpdateAccountInput) (*domain.User, error) {
	fields := map[string]any{}
	if input.Fullname != nil {
		if v := strings.TrimSpace(*input.Fullname); v != "" {
			fields["fullname"] = v
		}
	}
	if input.Email != nil {
		if v := domain.NormalizeHandle(*input.Email); v != "" {
			fields["email"] = v
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := s.userRepo.UpdateFields(ctx, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrEmailTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return user, nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file *storage.LocalFile) (*domain.User, error) {
	return s.replaceImage(ctx, userID, "avatar_url", file, ErrAvatarRequired)
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, file *storage.LocalFile) (*domain.User, error) {
	return s.replaceImage(ctx, userID, "cover_image_url", file, ErrCoverImageRequired)
}

func (s *AccountService) replaceImage(ctx context.Context, userID uuid.UUID, column string, file *storage.LocalFile, missing error) (*domain.User, error) {
	if file == nil {
		return nil, missing
	}
	defer file.Remove()

	url, err := s.store.Upload(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUploadFailed, column, err)
	}

	user, err := s.userRepo.UpdateFields(ctx, userID, map[string]any{column: url})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update %s: %w", column, err)
	}

	s.logger.InfoContext(ctx, "profile image replaced", "user_id", userID, "column", column)
	return user, nil
}
