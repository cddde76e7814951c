package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/vibedraft/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodePrecondition       = "PRECONDITION_FAILED"
	CodeTurn               = "TURN_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeForbidden          = "FORBIDDEN"
	CodeGenerationFailed   = "GENERATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeDraftNotReady      = "DRAFT_NOT_READY"
	CodeDraftComplete      = "DRAFT_COMPLETE"
	CodePickingStarted     = "PICKING_STARTED"
	CodeNoValidWords       = "NO_VALID_WORDS"
	CodeWordNotInPool      = "WORD_NOT_IN_POOL"
	CodeSelfJoin           = "SELF_JOIN"
	CodeSessionFull        = "SESSION_FULL"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeNotParticipant     = "NOT_PARTICIPANT"
	CodeWrongPhase         = "WRONG_PHASE"
	CodeAlreadyGenerated   = "ALREADY_GENERATED"
	CodeCardNotFound       = "CARD_NOT_FOUND"
	CodeImageNotFound      = "IMAGE_NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is written with
func Status(err error) int {
	return toHTTPError(err).status
}

// specific errors get their own code and a friendlier message than the
// generic mapping for their kind
var specific = []struct {
	err     error
	code    string
	message string
}{
	{model.ErrNotYourTurn, CodeNotYourTurn, "Not your turn yet"},
	{model.ErrPickingNotStarted, CodeDraftNotReady, "Draft not ready"},
	{model.ErrPoolTooSmall, CodeDraftNotReady, "Draft not ready: the pool needs at least 4 words"},
	{model.ErrDraftComplete, CodeDraftComplete, "The draft is already complete"},
	{model.ErrPickingStarted, CodePickingStarted, "Picking has already started"},
	{model.ErrNoValidWords, CodeNoValidWords, "Submit at least one word"},
	{model.ErrWordNotInPool, CodeWordNotInPool, "That word is not in the pool"},
	{model.ErrSelfJoin, CodeSelfJoin, "You cannot join your own session"},
	{model.ErrSessionFull, CodeSessionFull, "Session is full"},
	{model.ErrSessionNotFound, CodeSessionNotFound, "Session not found"},
	{model.ErrDraftNotFound, CodeSessionNotFound, "Session not found"},
	{model.ErrNotParticipant, CodeNotParticipant, "You are not in this session"},
	{model.ErrWrongPhase, CodeWrongPhase, "The session is not in the right phase for that"},
	{model.ErrAlreadyGenerated, CodeAlreadyGenerated, "The world has already been generated"},
	{model.ErrCardNotFound, CodeCardNotFound, "Card not found"},
	{model.ErrImageNotFound, CodeImageNotFound, "Image not found"},
	{model.ErrUsernameTaken, CodeUsernameExists, "Username already exists"},
	{model.ErrInvalidCredentials, CodeInvalidCredentials, "Invalid username or password"},
	{model.ErrInvalidToken, CodeUnauthorized, "Invalid or expired token"},
	{model.ErrGeneration, CodeGenerationFailed, "Content generation failed, please try again"},
}

var kindStatus = map[model.ErrorKind]struct {
	status int
	code   string
}{
	model.KindValidation:      {http.StatusBadRequest, CodeValidation},
	model.KindPrecondition:    {http.StatusConflict, CodePrecondition},
	model.KindTurn:            {http.StatusConflict, CodeTurn},
	model.KindForbidden:       {http.StatusForbidden, CodeForbidden},
	model.KindNotFound:        {http.StatusNotFound, CodeNotFound},
	model.KindConflict:        {http.StatusConflict, CodeConflict},
	model.KindGeneration:      {http.StatusBadGateway, CodeGenerationFailed},
	model.KindUnauthenticated: {http.StatusUnauthorized, CodeUnauthorized},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	kind := model.KindOf(err)
	mapping, ok := kindStatus[kind]
	if !ok {
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}

	for _, s := range specific {
		if errors.Is(err, s.err) {
			return &httpError{mapping.status, APIError{s.code, s.message}}
		}
	}

	// Validation messages carry the detail the caller needs to fix the input
	return &httpError{mapping.status, APIError{mapping.code, err.Error()}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error, naming the request id
// when there is one so the failure can be found in the logs
func NewInternalError(requestID string) error {
	message := "Internal server error"
	if requestID != "" {
		message += " (request " + requestID + ")"
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, message}}
}
