package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
	"github.com/padelhq/tournament-engine/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory repository fakes used across the service tests. They implement
// only what the paths under test exercise; anything else panics loudly.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo(ts ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
	for _, t := range ts {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		r.tournaments[t.ID] = t
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) ListByClub(ctx context.Context, clubID int) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.ClubID == clubID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdatePosterKey(ctx context.Context, id int, posterKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.PosterKey = posterKey
	return nil
}

type fakeRegistrationRepo struct {
	regs     map[int]*models.Registration
	nextID   int
	forfeits map[int]models.ForfeitType
}

func newFakeRegistrationRepo(regs ...*models.Registration) *fakeRegistrationRepo {
	r := &fakeRegistrationRepo{regs: make(map[int]*models.Registration), nextID: 1, forfeits: make(map[int]models.ForfeitType)}
	for _, reg := range regs {
		if reg.ID == 0 {
			reg.ID = r.nextID
		}
		r.regs[reg.ID] = reg
		if reg.ID >= r.nextID {
			r.nextID = reg.ID + 1
		}
	}
	return r
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	for _, existing := range r.regs {
		if existing.TournamentID == reg.TournamentID &&
			existing.Player1ID == reg.Player1ID && existing.Player2ID == reg.Player2ID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = r.nextID
	r.nextID++
	reg.CreatedAt = time.Now()
	r.regs[reg.ID] = reg
	return nil
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus, phase *models.RegistrationPhase) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, reg := range r.regs {
		if reg.TournamentID != tournamentID {
			continue
		}
		if status != nil && reg.Status != *status {
			continue
		}
		if phase != nil && reg.Phase != *phase {
			continue
		}
		copied := *reg
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRegistrationRepo) Update(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	if _, ok := r.regs[reg.ID]; !ok {
		return repositories.ErrRegistrationNotFound
	}
	copied := *reg
	r.regs[reg.ID] = &copied
	return nil
}

func (r *fakeRegistrationRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (r *fakeRegistrationRepo) UpdatePoolAssignment(ctx context.Context, exec repositories.SQLExecutor, id int, poolID int, division int) error {
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.PoolID = &poolID
	reg.Division = &division
	reg.Phase = models.PhaseQualifications
	return nil
}

func (r *fakeRegistrationRepo) SetForfeit(ctx context.Context, exec repositories.SQLExecutor, id int, forfeitType models.ForfeitType, at time.Time) error {
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.ForfeitType = &forfeitType
	reg.ForfeitDate = &at
	reg.Phase = models.PhaseEliminated
	r.forfeits[id] = forfeitType
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
	for _, m := range matches {
		if m.ID == 0 {
			m.ID = r.nextID
		}
		r.matches[m.ID] = m
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
	}
	return r
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	round := matches[0].RoundType
	for _, existing := range r.matches {
		if existing.TournamentID == matches[0].TournamentID && existing.RoundType == round {
			return repositories.ErrMatchRoundConflict
		}
	}
	for _, m := range matches {
		m.ID = r.nextID
		r.nextID++
		m.CreatedAt = time.Now()
		r.matches[m.ID] = m
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, roundType *models.RoundType) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if roundType != nil && m.RoundType != *roundType {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, score *models.MatchScore, status models.MatchStatus, winnerRegistrationID int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.WinnerRegistrationID != nil {
		return repositories.ErrMatchAlreadyDecided
	}
	m.Score = score
	m.Status = status
	m.WinnerRegistrationID = &winnerRegistrationID
	return nil
}

type fakeDisciplinaryRepo struct {
	entries []*models.DisciplinaryPoints
}

func (r *fakeDisciplinaryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.DisciplinaryPoints) error {
	entry.ID = len(r.entries) + 1
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeDisciplinaryRepo) ListByPlayer(ctx context.Context, playerID int) ([]*models.DisciplinaryPoints, error) {
	var out []*models.DisciplinaryPoints
	for _, e := range r.entries {
		if e.PlayerID != nil && *e.PlayerID == playerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeDisciplinaryRepo) SumActiveByPlayer(ctx context.Context, playerID int, now time.Time) (int, error) {
	total := 0
	for _, e := range r.entries {
		if e.PlayerID != nil && *e.PlayerID == playerID && e.IsActive {
			if e.ExpiresAt == nil || e.ExpiresAt.After(now) {
				total += e.Points
			}
		}
	}
	return total, nil
}

func (r *fakeDisciplinaryRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, e := range r.entries {
		if e.IsActive && e.ExpiresAt != nil && !e.ExpiresAt.After(now) {
			e.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakePoolRepo struct {
	pools  map[int]*models.Pool
	nextID int
}

func newFakePoolRepo() *fakePoolRepo {
	return &fakePoolRepo{pools: make(map[int]*models.Pool), nextID: 1}
}

func (r *fakePoolRepo) Create(ctx context.Context, exec repositories.SQLExecutor, pool *models.Pool) error {
	pool.ID = r.nextID
	r.nextID++
	r.pools[pool.ID] = pool
	return nil
}

func (r *fakePoolRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Pool, error) {
	var out []*models.Pool
	for _, p := range r.pools {
		if p.TournamentID == tournamentID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePoolRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.PoolStatus) error {
	p, ok := r.pools[id]
	if !ok {
		return repositories.ErrPoolNotFound
	}
	p.Status = status
	return nil
}

type fakeUploader struct {
	uploads map[string][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if u.uploads == nil {
		u.uploads = make(map[string][]byte)
	}
	u.uploads[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	delete(u.uploads, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return fmt.Sprintf("https://cdn.test/%s", key)
}
