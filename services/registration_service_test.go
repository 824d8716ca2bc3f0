package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhq/tournament-engine/models"
)

func newRegistrationServiceFixture(tournament *models.Tournament, regs ...*models.Registration) (RegistrationService, *fakeRegistrationRepo) {
	registrationRepo := newFakeRegistrationRepo(regs...)
	tournamentRepo := newFakeTournamentRepo(tournament)
	return NewRegistrationService(registrationRepo, tournamentRepo, testLogger()), registrationRepo
}

func TestRegisterPair(t *testing.T) {
	svc, repo := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen})

	reg, err := svc.Register(context.Background(), 1, RegisterPairInput{
		Player1ID: 100, Player2ID: 101, Player1Rank: 12, Player2Rank: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
	assert.Equal(t, models.PhaseMainDraw, reg.Phase)
	assert.Equal(t, models.PaymentStatusPending, reg.Payment)
	assert.Equal(t, 42, reg.PairWeight)

	stored, err := repo.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, stored.PairWeight)
}

func TestRegisterPairClosedTournament(t *testing.T) {
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusRegistrationClosed})

	_, err := svc.Register(context.Background(), 1, RegisterPairInput{Player1ID: 100, Player2ID: 101})
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestRegisterPairValidation(t *testing.T) {
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen})

	_, err := svc.Register(context.Background(), 1, RegisterPairInput{Player1ID: 100, Player2ID: 100})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(context.Background(), 1, RegisterPairInput{Player1ID: 100})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(context.Background(), 1, RegisterPairInput{Player1ID: 100, Player2ID: 101, Player1Rank: -1})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterPairDuplicate(t *testing.T) {
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen})

	input := RegisterPairInput{Player1ID: 100, Player2ID: 101}
	_, err := svc.Register(context.Background(), 1, input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), 1, input)
	assert.ErrorIs(t, err, ErrRegistrationConflict)
}

func TestUpdateRegistrationRankKeepsPairWeightInvariant(t *testing.T) {
	reg := &models.Registration{
		ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101,
		Player1Rank: 10, Player2Rank: 20, PairWeight: 30,
		Status: models.RegistrationStatusPending, Phase: models.PhaseMainDraw,
	}
	svc, repo := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	newRank := 50
	updated, err := svc.Update(context.Background(), 5, 1, 1, UpdateRegistrationInput{Player1Rank: &newRank})
	require.NoError(t, err)
	assert.Equal(t, 70, updated.PairWeight)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.PairWeight)
}

func TestUpdateRegistrationConfirm(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusPending}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	confirmed := models.RegistrationStatusConfirmed
	updated, err := svc.Update(context.Background(), 5, 1, 1, UpdateRegistrationInput{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusConfirmed, updated.Status)
}

func TestUpdateRegistrationRejectsAdminSettingWithdrawn(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusPending}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	withdrawn := models.RegistrationStatusWithdrawn
	_, err := svc.Update(context.Background(), 5, 1, 1, UpdateRegistrationInput{Status: &withdrawn})
	assert.ErrorIs(t, err, ErrInvalidRegistrationStatus)
}

func TestUpdateRegistrationWrongClub(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	confirmed := models.RegistrationStatusConfirmed
	_, err := svc.Update(context.Background(), 6, 1, 1, UpdateRegistrationInput{Status: &confirmed})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpdateRegistrationOtherTournament(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 2, Player1ID: 100, Player2ID: 101}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	confirmed := models.RegistrationStatusConfirmed
	_, err := svc.Update(context.Background(), 5, 1, 1, UpdateRegistrationInput{Status: &confirmed})
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestWithdrawOwnRegistration(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusPending}
	svc, repo := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	err := svc.Withdraw(context.Background(), 1, 1, 101)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusWithdrawn, stored.Status)
}

func TestWithdrawByStranger(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusPending}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	err := svc.Withdraw(context.Background(), 1, 1, 999)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestWithdrawAfterStart(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusPending}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}, reg)

	err := svc.Withdraw(context.Background(), 1, 1, 100)
	assert.ErrorIs(t, err, ErrTournamentAlreadyStarted)
}

func TestWithdrawConfirmedRegistration(t *testing.T) {
	reg := &models.Registration{ID: 1, TournamentID: 1, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusConfirmed}
	svc, _ := newRegistrationServiceFixture(&models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusOpen}, reg)

	err := svc.Withdraw(context.Background(), 1, 1, 100)
	assert.ErrorIs(t, err, ErrRegistrationAlreadyValidated)
}
