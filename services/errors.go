package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapper.
var (
	// Not found
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrPoolNotFound         = errors.New("pool not found")

	// Validation
	ErrValidationFailed            = errors.New("validation failed")
	ErrTournamentNameRequired      = errors.New("tournament name is required")
	ErrTournamentInvalidFormat     = errors.New("invalid tournament format")
	ErrTournamentInvalidDateRange  = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCourtCount = errors.New("tournament court count must be positive")

	// State errors: terminal for the request, safe to show verbatim to an admin.
	ErrNoAdvanceableRound           = errors.New("no advanceable round: current round incomplete or next round already generated")
	ErrInsufficientWinners          = errors.New("fewer than 2 winners available; the tournament should be completed instead")
	ErrInsufficientRegistrations    = errors.New("not enough confirmed registrations to build a draw")
	ErrMatchAlreadyDecided          = errors.New("match already has a winner")
	ErrInvalidScore                 = errors.New("score does not satisfy the match format")
	ErrDrawAlreadyPublished         = errors.New("knockout draw already exists for this tournament")
	ErrPoolsAlreadyAssigned         = errors.New("pools already assigned for this tournament")
	ErrRegistrationNotOpen          = errors.New("tournament registration is not open")
	ErrRegistrationAlreadyValidated = errors.New("registration has already been validated")
	ErrTournamentAlreadyStarted     = errors.New("tournament has already started")
	ErrInvalidStatusTransition      = errors.New("invalid tournament status transition")
	ErrInvalidRegistrationStatus    = errors.New("invalid registration status for this operation")

	// Data integrity: a round carries more winners than the largest knockout
	// round can seat. Maps to 500; the match table needs manual repair.
	ErrBracketInconsistent = errors.New("bracket inconsistent: winner count exceeds the largest knockout round")

	// Conflicts
	ErrRegistrationConflict   = errors.New("pair is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists for this club")

	// Authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)
