package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/transport/http/middleware"
)

type RecommendHandler struct {
	recommendService *service.RecommendService
	log              *logrus.Logger
}

func NewRecommendHandler(recommendService *service.RecommendService, log *logrus.Logger) *RecommendHandler {
	return &RecommendHandler{recommendService: recommendService, log: log}
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.recommendService.Recommend(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("recommendations failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, users)
}
