package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/vibedraft/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// maxBodyBytes caps request bodies; the largest legitimate one is a word list
const maxBodyBytes = 64 << 10

type validator interface {
	Validate() error
}

// decodeBody decodes a required JSON body into v and validates it. On failure
// it has already written the error response.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return false
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			WriteError(w, NewInvalidRequestError(err.Error()))
			return false
		}
	}
	return true
}

// decodeOptional decodes a JSON body into v, treating an empty body as the zero value
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
