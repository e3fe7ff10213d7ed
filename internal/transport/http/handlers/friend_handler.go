package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
	log           *logrus.Logger
}

func NewFriendHandler(friendService *service.FriendService, log *logrus.Logger) *FriendHandler {
	return &FriendHandler{friendService: friendService, log: log}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	recipientID, err := uuid.Parse(r.PathValue("recipientId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid recipient ID")
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), userID, recipientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRequest):
			writeError(w, http.StatusBadRequest, "SELF_REQUEST", "Cannot send a friend request to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrDuplicateRequest):
			writeError(w, http.StatusConflict, "DUPLICATE_REQUEST", "A pending request already exists between you")
		case errors.Is(err, service.ErrAlreadyFriends):
			writeError(w, http.StatusConflict, "ALREADY_FRIENDS", "You are already friends")
		default:
			h.log.WithError(err).Error("send friend request failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, err := uuid.Parse(r.PathValue("requestId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	req, err := h.friendService.AcceptRequest(r.Context(), userID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, service.ErrNotRecipient):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the recipient can accept this request")
		case errors.Is(err, service.ErrAlreadyAccepted):
			writeError(w, http.StatusConflict, "ALREADY_ACCEPTED", "Request was already accepted")
		default:
			h.log.WithError(err).Error("accept friend request failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *FriendHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.friendService.ListIncoming(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("list incoming requests failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *FriendHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.friendService.ListOutgoing(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("list outgoing requests failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("list friends failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, friends)
}
