package handler

import (
	"net/http"
	"strconv"

	"hapyland/internal/app/service"
	"hapyland/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
	logger           *zap.Logger
}

func NewChallengeHandler(cs *service.ChallengeService, logger *zap.Logger) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs, logger: logger}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/challenges", h.listChallenges)
}

// listChallenges answers with a bare {data: [...]}, no status or message.
func (h *ChallengeHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultChallengeLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = l
	}

	challenges, err := h.challengeService.List(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.Envelope{Data: challenges})
}
