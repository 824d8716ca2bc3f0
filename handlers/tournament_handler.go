package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/padelhq/tournament-engine/middleware"
	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	drawService       services.DrawService
	advanceService    services.AdvanceService
	matchService      services.MatchService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	drawService services.DrawService,
	advanceService services.AdvanceService,
	matchService services.MatchService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		drawService:       drawService,
		advanceService:    advanceService,
		matchService:      matchService,
	}
}

type createTournamentRequest struct {
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Format     string    `json:"format"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CourtCount int       `json:"court_count"`
}

func (h *TournamentHandler) CreateTournamentHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}

	var input createTournamentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament := &models.Tournament{
		Name:       input.Name,
		Category:   input.Category,
		Format:     models.TournamentFormat(input.Format),
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		CourtCount: input.CourtCount,
	}
	if err := h.tournamentService.Create(r.Context(), clubID, tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListTournamentsHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}

	tournaments, err := h.tournamentService.ListByClub(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournamentHandler serves the full bracket view (registrations, pools,
// matches) and is reachable without authentication.
func (h *TournamentHandler) GetTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetFull(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateStatusRequest struct {
	Status models.TournamentStatus `json:"status"`
}

func (h *TournamentHandler) UpdateTournamentStatusHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), clubID, tournamentID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) PublishDrawHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.drawService.PublishDraw(r.Context(), clubID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type assignPoolsRequest struct {
	PoolSize int `json:"pool_size"`
}

func (h *TournamentHandler) AssignPoolsHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input assignPoolsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pools, err := h.drawService.AssignPools(r.Context(), clubID, tournamentID, input.PoolSize)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pools": pools}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceFinalNextRoundHandler triggers round progression: it finalizes the
// completed round and generates the next one from its winners.
func (h *TournamentHandler) AdvanceFinalNextRoundHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.advanceService.FinalizeNextRound(r.Context(), clubID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListTournamentMatchesHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var roundType *models.RoundType
	if raw := r.URL.Query().Get("round_type"); raw != "" {
		rt := models.RoundType(raw)
		if !rt.Valid() {
			badRequestResponse(w, r, fmt.Errorf("unknown round_type %q", raw))
			return
		}
		roundType = &rt
	}

	matches, err := h.matchService.ListByTournament(r.Context(), clubID, tournamentID, roundType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

const posterMaxBytes = 5 << 20

func (h *TournamentHandler) UploadPosterHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(posterMaxBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, header, err := r.FormFile("poster")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	tournament, err := h.tournamentService.UploadPoster(r.Context(), clubID, tournamentID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
