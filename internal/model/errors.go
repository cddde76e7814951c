package model

import "errors"

// ErrorKind classifies errors by how a caller is expected to react
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"   // caller corrects input and retries
	KindPrecondition    ErrorKind = "precondition" // wrong state, caller waits or adjusts
	KindTurn            ErrorKind = "turn"         // out-of-turn action
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindForbidden       ErrorKind = "forbidden"
	KindGeneration      ErrorKind = "generation"
	KindUnauthenticated ErrorKind = "unauthenticated"
)

// Error is a classified domain error. Sentinels below are compared with errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first classified error in err's chain,
// or an empty kind if there is none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Common errors used across the application
var (
	// Identity errors
	ErrUnauthenticated    = newError(KindUnauthenticated, "not authenticated")
	ErrPlayerNotFound     = newError(KindNotFound, "player not found")
	ErrAccountNotFound    = newError(KindNotFound, "account not found")
	ErrUsernameTaken      = newError(KindConflict, "username already exists")
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid credentials")
	ErrInvalidToken       = newError(KindUnauthenticated, "invalid or expired token")
	ErrInvalidAccount     = newError(KindValidation, "invalid account details")

	// Session errors
	ErrSessionNotFound   = newError(KindNotFound, "session not found")
	ErrSessionFull       = newError(KindConflict, "session is full")
	ErrSelfJoin          = newError(KindConflict, "cannot join your own session")
	ErrNotParticipant    = newError(KindForbidden, "player is not in this session")
	ErrWrongPhase        = newError(KindPrecondition, "session is not in the required phase")
	ErrPhaseRegression   = newError(KindConflict, "session phase cannot move backwards")
	ErrConcurrentUpdate  = newError(KindConflict, "record was modified concurrently")
	ErrAlreadyGenerated  = newError(KindConflict, "world has already been generated")
	ErrGenerationPending = newError(KindPrecondition, "world generation has not completed")

	// Draft errors
	ErrDraftNotFound     = newError(KindNotFound, "draft pool not found")
	ErrNoValidWords      = newError(KindValidation, "submit at least one word")
	ErrPoolTooSmall      = newError(KindPrecondition, "insufficient pool size")
	ErrPickingStarted    = newError(KindConflict, "picking has already started")
	ErrPickingNotStarted = newError(KindTurn, "picking has not started")
	ErrDraftComplete     = newError(KindTurn, "draft is complete")
	ErrNotYourTurn       = newError(KindTurn, "not this player's turn to pick")
	ErrWordNotInPool     = newError(KindNotFound, "word not in pool")

	// Card errors
	ErrCardNotFound    = newError(KindNotFound, "card not found")
	ErrImageNotFound   = newError(KindNotFound, "image not found")
	ErrInvalidCard     = newError(KindValidation, "invalid card")
	ErrUnknownMechanic = newError(KindValidation, "unknown ability mechanic")
	ErrUnknownKeyword  = newError(KindValidation, "unknown keyword")

	// Generation errors
	ErrGeneration = newError(KindGeneration, "content generation failed")
)
