package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhq/tournament-engine/brackets"
	"github.com/padelhq/tournament-engine/models"
)

func validScore() *models.MatchScore {
	return &models.MatchScore{Sets: []models.SetScore{
		{Team1Games: 6, Team2Games: 3},
		{Team1Games: 6, Team2Games: 4},
	}}
}

func newMatchServiceFixture(t *testing.T, tournament *models.Tournament, matches ...*models.Match) (MatchService, *fakeMatchRepo, *fakeTournamentRepo, *fakeRegistrationRepo, *fakeDisciplinaryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	matchRepo := newFakeMatchRepo(matches...)
	tournamentRepo := newFakeTournamentRepo(tournament)
	registrationRepo := newFakeRegistrationRepo(
		&models.Registration{ID: 10, TournamentID: tournament.ID, Player1ID: 100, Player2ID: 101, Status: models.RegistrationStatusConfirmed},
		&models.Registration{ID: 20, TournamentID: tournament.ID, Player1ID: 200, Player2ID: 201, Status: models.RegistrationStatusConfirmed},
	)
	disciplinaryRepo := &fakeDisciplinaryRepo{}

	svc := NewMatchService(db, matchRepo, registrationRepo, tournamentRepo, disciplinaryRepo, brackets.NewHub(testLogger()), testLogger())
	return svc, matchRepo, tournamentRepo, registrationRepo, disciplinaryRepo, mock
}

func TestRecordResultScore(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, matchRepo, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	got, err := svc.RecordResult(context.Background(), 5, match.ID, validScore(), nil)
	require.NoError(t, err)
	require.NotNil(t, got.WinnerRegistrationID)
	assert.Equal(t, 10, *got.WinnerRegistrationID)
	assert.Equal(t, models.MatchStatusCompleted, got.Status)

	stored, err := matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, *stored.WinnerRegistrationID)
	assert.NotNil(t, stored.Score)
}

func TestRecordResultScoreSideTwoWins(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	score := &models.MatchScore{Sets: []models.SetScore{
		{Team1Games: 2, Team2Games: 6},
		{Team1Games: 4, Team2Games: 6},
	}}
	got, err := svc.RecordResult(context.Background(), 5, match.ID, score, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, *got.WinnerRegistrationID)
}

func TestRecordResultInvalidScore(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	score := &models.MatchScore{Sets: []models.SetScore{{Team1Games: 6, Team2Games: 3}}}
	_, err := svc.RecordResult(context.Background(), 5, match.ID, score, nil)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestRecordResultAlreadyDecided(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := completedMatch(1, models.RoundSemis, 1, 10, 20, 10)
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 5, match.ID, validScore(), nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
}

func TestRecordResultByeMatch(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := &models.Match{TournamentID: 1, RoundType: models.RoundQuarters, MatchOrder: 1, IsBye: true, Status: models.MatchStatusCompleted}
	team1 := 10
	match.Team1RegistrationID = &team1
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 5, match.ID, validScore(), nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
}

func TestRecordResultWrongClub(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 99, match.ID, validScore(), nil)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestRecordResultNeedsScoreOrForfeit(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 5, match.ID, nil, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRecordResultFinalCompletesTournament(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundFinal, 1, 10, 20)
	svc, _, tournamentRepo, _, _, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 5, match.ID, validScore(), nil)
	require.NoError(t, err)

	stored, err := tournamentRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, stored.Status)
}

func TestRecordResultForfeitCreditsOpponent(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, matchRepo, _, registrationRepo, disciplinaryRepo, mock := newMatchServiceFixture(t, tournament, match)

	mock.ExpectBegin()
	mock.ExpectCommit()

	got, err := svc.RecordResult(context.Background(), 5, match.ID, nil, &ForfeitInput{
		RegistrationID: 20,
		Type:           models.ForfeitNoShow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusForfeit, got.Status)
	assert.Equal(t, 10, *got.WinnerRegistrationID)

	stored, err := matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusForfeit, stored.Status)

	// The forfeiting registration is marked, and exactly one penalty entry
	// exists against it.
	assert.Equal(t, models.ForfeitNoShow, registrationRepo.forfeits[20])
	require.Len(t, disciplinaryRepo.entries, 1)
	entry := disciplinaryRepo.entries[0]
	require.NotNil(t, entry.RegistrationID)
	assert.Equal(t, 20, *entry.RegistrationID)
	assert.Equal(t, models.ForfeitPenaltyPoints[models.ForfeitNoShow], entry.Points)
	assert.True(t, entry.IsActive)
	require.NotNil(t, entry.ExpiresAt)
}

func TestRecordResultForfeitUnknownType(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, _, _, _, disciplinaryRepo, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 5, match.ID, nil, &ForfeitInput{
		RegistrationID: 20,
		Type:           models.ForfeitType("tantrum"),
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, disciplinaryRepo.entries)
}

func TestRecordResultForfeitByOutsider(t *testing.T) {
	tournament := &models.Tournament{ID: 1, ClubID: 5, Status: models.TournamentStatusInProgress}
	match := openMatch(1, models.RoundSemis, 1, 10, 20)
	svc, _, _, _, _, _ := newMatchServiceFixture(t, tournament, match)

	_, err := svc.RecordResult(context.Background(), 5, match.ID, nil, &ForfeitInput{
		RegistrationID: 999,
		Type:           models.ForfeitWithdrawal,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
