package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dom/videotube-identity/internal/api/middleware"
	"github.com/dom/videotube-identity/internal/api/response"
	"github.com/dom/videotube-identity/internal/config"
	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/service"
	"github.com/dom/videotube-identity/internal/storage"
	"github.com/dom/videotube-identity/internal/token"
)

type AuthHandler struct {
	authService *service.AuthService
	cookies     cookieWriter
	cfg         *config.Config
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, tokens *token.Service, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies: cookieWriter{
			secure:     cfg.CookieSecure,
			accessTTL:  tokens.AccessTTL(),
			refreshTTL: tokens.RefreshTTL(),
		},
		cfg:    cfg,
		logger: logger,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type LoginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.cfg.MaxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	avatar, err := formFile(r, h.cfg.UploadTempDir, "avatar")
	if err != nil {
		response.Error(w, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	cover, err := formFile(r, h.cfg.UploadTempDir, "coverImage", "coverimage")
	if err != nil {
		storage.RemoveAll(avatar)
		response.Error(w, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	defer storage.RemoveAll(avatar, cover)

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Fullname:   r.FormValue("fullname"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, user, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	h.cookies.set(w, &result.Tokens)
	response.JSON(w, http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "User logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	h.cookies.clear(w)
	response.JSON(w, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshToken reads the refresh token from its cookie, falling back to the
// JSON body. Failed refreshes clear both cookies.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		raw = c.Value
	}
	if raw == "" {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		raw = req.RefreshToken
	}

	pair, err := h.authService.Refresh(r.Context(), raw)
	if err != nil {
		h.cookies.clear(w)
		response.ServiceError(w, r, h.logger, err)
		return
	}

	h.cookies.set(w, pair)
	response.JSON(w, http.StatusOK, pair, "Access token refreshed")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	if h.cfg.RevokeSessionsOnPasswordChange {
		h.cookies.clear(w)
	}
	response.JSON(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	response.JSON(w, http.StatusOK, user, "Current user fetched successfully")
}
