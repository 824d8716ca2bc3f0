package handlers

import (
	"net/http"

	"github.com/padelhq/tournament-engine/middleware"
	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

type registerPairRequest struct {
	Player2ID   int `json:"player2_id"`
	Player1Rank int `json:"player1_rank"`
	Player2Rank int `json:"player2_rank"`
}

func (h *RegistrationHandler) RegisterPairHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input registerPairRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.Register(r.Context(), tournamentID, services.RegisterPairInput{
		Player1ID:   userID,
		Player2ID:   input.Player2ID,
		Player1Rank: input.Player1Rank,
		Player2Rank: input.Player2Rank,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateRegistrationRequest struct {
	Status      *models.RegistrationStatus `json:"status,omitempty"`
	Player1Rank *int                       `json:"player1_rank,omitempty"`
	Player2Rank *int                       `json:"player2_rank,omitempty"`
	SeedNumber  *int                       `json:"seed_number,omitempty"`
}

// UpdateRegistrationHandler lets the organizing club validate, reject or
// reseed a pair.
func (h *RegistrationHandler) UpdateRegistrationHandler(w http.ResponseWriter, r *http.Request) {
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
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateRegistrationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.Update(r.Context(), clubID, tournamentID, registrationID, services.UpdateRegistrationInput{
		Status:      input.Status,
		Player1Rank: input.Player1Rank,
		Player2Rank: input.Player2Rank,
		SeedNumber:  input.SeedNumber,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) WithdrawRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r)
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.Withdraw(r.Context(), tournamentID, registrationID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "registration withdrawn"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
