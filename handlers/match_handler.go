package handlers

import (
	"net/http"

	"github.com/padelhq/tournament-engine/middleware"
	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/services"
)

type MatchHandler struct {
	matchService        services.MatchService
	disciplinaryService services.DisciplinaryService
}

func NewMatchHandler(matchService services.MatchService, disciplinaryService services.DisciplinaryService) *MatchHandler {
	return &MatchHandler{matchService: matchService, disciplinaryService: disciplinaryService}
}

type recordResultRequest struct {
	Score   *models.MatchScore     `json:"score,omitempty"`
	Forfeit *services.ForfeitInput `json:"forfeit,omitempty"`
}

// RecordResultHandler applies a score or a forfeit to a single match.
// Exactly one of the two must be present.
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input recordResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if (input.Score == nil) == (input.Forfeit == nil) {
		errorResponse(w, r, http.StatusBadRequest, "request must carry either a score or a forfeit")
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), clubID, matchID, input.Score, input.Forfeit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListPlayerDisciplinaryHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	points, err := h.disciplinaryService.ListByPlayer(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	active, err := h.disciplinaryService.ActivePoints(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"disciplinary_points": points, "active_total": active}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
