package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/transport/http/middleware"
	"github.com/tandemhq/tandem/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	log         *logrus.Logger
}

func NewUserHandler(userService *service.UserService, log *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			h.log.WithError(err).Error("fetch profile failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.OnboardingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateOnboarding(input.FullName, input.NativeLanguage, input.LearningLanguage, input.ProfilePic); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.CompleteOnboarding(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			h.log.WithError(err).Error("onboarding failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}
