package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/videotube-identity/internal/config"
	"github.com/dom/videotube-identity/internal/credential"
	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/repository"
	"github.com/dom/videotube-identity/internal/storage"
	"github.com/dom/videotube-identity/internal/token"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	store       storage.Store
	tokens      *token.Service
	hasher      credential.Hasher
	cfg         *config.Config
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	store storage.Store,
	tokens *token.Service,
	hasher credential.Hasher,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		store:       store,
		tokens:      tokens,
		hasher:      hasher,
		cfg:         cfg,
		logger:      logger.With("component", "auth"),
		now:         time.Now,
	}
}

type RegisterInput struct {
	Fullname   string
	Email      string
	Username   string
	Password   string
	Avatar     *storage.LocalFile
	CoverImage *storage.LocalFile
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User   *domain.User
	Tokens token.Pair
}

// Register validates the input, uploads the images and creates the user.
// Temp files are always removed; no user is created when an upload fails.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	defer storage.RemoveAll(input.Avatar, input.CoverImage)

	fullname := strings.TrimSpace(input.Fullname)
	email := domain.NormalizeHandle(input.Email)
	username := domain.NormalizeHandle(input.Username)
	if fullname == "" || email == "" || username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	if input.Avatar == nil {
		return nil, ErrAvatarRequired
	}

	avatarURL, err := s.store.Upload(ctx, input.Avatar)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar: %v", ErrUploadFailed, err)
	}

	var coverURL string
	if input.CoverImage != nil {
		coverURL, err = s.store.Upload(ctx, input.CoverImage)
		if err != nil {
			return nil, fmt.Errorf("%w: cover image: %v", ErrUploadFailed, err)
		}
	}

	user := &domain.User{
		Username:      username,
		Email:         email,
		Fullname:      fullname,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		WatchHistory:  datatypes.JSONSlice[uuid.UUID]{},
	}
	user.SetPassword(input.Password, s.hasher)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Username) == "" && strings.TrimSpace(input.Email) == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: *pair}, nil
}

// startSession issues a token pair and replaces every stored session of the
// user with the new one, so only the newest refresh token stays valid.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*token.Pair, error) {
	session, pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("delete old sessions: %w", err)
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return pair, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.UserSession, *token.Pair, error) {
	sessionID := uuid.New()

	accessToken, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, expiresAt, err := s.tokens.IssueRefresh(user, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("issue refresh token: %w", err)
	}

	session := &domain.UserSession{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: token.HashRefresh(refreshToken),
		ExpiresAt:        expiresAt,
		CreatedAt:        s.now(),
	}
	return session, &token.Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout drops every session of the user. Calling it twice is harmless.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// is consumed: replaying it afterwards fails.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*token.Pair, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrRefreshTokenMissing
	}

	claims, err := s.tokens.VerifyRefresh(rawToken)
	if err != nil {
		s.logger.DebugContext(ctx, "refresh token rejected", "error", err)
		return nil, ErrRefreshTokenInvalid
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenUsed
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != user.ID || session.Expired(s.now()) || !token.MatchesRefresh(rawToken, session.RefreshTokenHash) {
		return nil, ErrRefreshTokenUsed
	}

	next, pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Rotate(ctx, session.ID, user.ID, session.RefreshTokenHash, next); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrRefreshTokenUsed
		}
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	return pair, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if strings.TrimSpace(oldPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return ErrPasswordFieldsRequired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidOldPassword
	}

	user.SetPassword(newPassword, s.hasher)
	if err := s.userRepo.UpdatePassword(ctx, user); err != nil {
		return fmt.Errorf("save password: %w", err)
	}

	if s.cfg.RevokeSessionsOnPasswordChange {
		if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}
	return nil
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	if rawToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.VerifyAccess(rawToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// PruneSessions deletes expired sessions and returns how many were removed.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}
