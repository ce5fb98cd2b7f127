package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/videotube-identity/internal/api/middleware"
	"github.com/dom/videotube-identity/internal/api/response"
	"github.com/dom/videotube-identity/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ChannelHandler struct {
	channelService *service.ChannelService
	logger         *slog.Logger
}

func NewChannelHandler(channelService *service.ChannelService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{channelService: channelService, logger: logger}
}

type SubscriptionResponse struct {
	ChannelID  uuid.UUID `json:"channelId"`
	Subscribed bool      `json:"subscribed"`
}

func (h *ChannelHandler) GetChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserID(r.Context())

	profile, err := h.channelService.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *ChannelHandler) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	history, err := h.channelService.GetWatchHistory(r.Context(), userID)
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, history, "Watch history fetched successfully")
}

func (h *ChannelHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid video id")
		return
	}

	history, err := h.channelService.RecordView(r.Context(), userID, videoID)
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, history, "View recorded")
}

func (h *ChannelHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}

	channelID, err := uuid.Parse(chi.URLParam(r, "channelId"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid channel id")
		return
	}

	subscribed, err := h.channelService.ToggleSubscription(r.Context(), userID, channelID)
	if err != nil {
		response.ServiceError(w, r, h.logger, err)
		return
	}

	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	response.JSON(w, http.StatusOK, SubscriptionResponse{ChannelID: channelID, Subscribed: subscribed}, message)
}
