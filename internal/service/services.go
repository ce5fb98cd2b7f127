package service

import (
	"fmt"
	"log/slog"

	"github.com/dom/videotube-identity/internal/config"
	"github.com/dom/videotube-identity/internal/credential"
	"github.com/dom/videotube-identity/internal/repository"
	"github.com/dom/videotube-identity/internal/storage"
	"github.com/dom/videotube-identity/internal/token"
)

type Services struct {
	Auth    *AuthService
	Account *AccountService
	Channel *ChannelService
	Tokens  *token.Service
}

func NewServices(repos *repository.Repositories, store storage.Store, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	tokens, err := token.New(cfg.TokenConfig())
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	hasher := credential.NewBcryptHasher(cfg.BcryptCost)

	return &Services{
		Auth:    NewAuthService(repos.User, repos.Session, store, tokens, hasher, cfg, logger),
		Account: NewAccountService(repos.User, store, logger),
		Channel: NewChannelService(repos.User, repos.Channel, repos.Video, repos.Subscription, logger),
		Tokens:  tokens,
	}, nil
}
