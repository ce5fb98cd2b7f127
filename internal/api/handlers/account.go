package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dom/videotube-identity/internal/api/middleware"
	"github.com/dom/videotube-identity/internal/api/response"
	"github.com/dom/videotube-identity/internal/config"
	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/service"
	"github.com/dom/videotube-identity/internal/storage"
	"github.com/google/uuid"
)

type AccountHandler struct {
	accountService *service.AccountService
	cfg            *config.Config
	logger         *slog.Logger
}

func NewAccountHandler(accountService *service.AccountService, cfg *config.Config, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, cfg: cfg, logger: logger}
}

type UpdateAccountRequest struct {
	Fullname *string `json:"fullname"`
	Email    *string `json:"email"`
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accountService.UpdateAccount(r.Context(), userID, service.UpdateAccountInput{
		Fullname: req.Fullname,
		Email:    req.Email,
	})
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user, "Account details updated successfully")
}

func (h *AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, h.accountService.UpdateAvatar, "Avatar image updated successfully", "avatar")
}

func (h *AccountHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, h.accountService.UpdateCoverImage, "Cover image updated successfully", "coverImage", "coverimage")
}

type imageUpdater func(ctx context.Context, userID uuid.UUID, file *storage.LocalFile) (*domain.User, error)

func (h *AccountHandler) replaceImage(w http.ResponseWriter, r *http.Request, update imageUpdater, message string, fields ...string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	if err := parseMultipart(w, r, h.cfg.MaxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, err := formFile(r, h.cfg.UploadTempDir, fields...)
	if err != nil {
		response.Error(w, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	defer storage.RemoveAll(file)

	user, err := update(r.Context(), userID, file)
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user, message)
}
