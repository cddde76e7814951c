// Package request holds the JSON bodies accepted by the API. Types with a
// Validate method are checked before they reach a handler.
package request

import (
	"errors"
	"strings"
)

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(name + " is required")
	}
	return nil
}

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

func (r CreateGuestRequest) Validate() error {
	return required("display_name", r.DisplayName)
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return errors.Join(required("username", r.Username), required("password", r.Password))
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return errors.Join(required("username", r.Username), required("password", r.Password))
}

// SubmitWordsRequest is the request body for adding words to the pool
type SubmitWordsRequest struct {
	Words []string `json:"words"`
}

// PickRequest is the request body for picking a word
type PickRequest struct {
	Word string `json:"word"`
}

func (r PickRequest) Validate() error {
	return required("word", r.Word)
}

// GenerateWorldRequest optionally overrides the picks a world is built from
type GenerateWorldRequest struct {
	Player1Picks []string `json:"player1_picks,omitempty"`
	Player2Picks []string `json:"player2_picks,omitempty"`
}

// GenerateCardRequest optionally overrides the context a card is built from
type GenerateCardRequest struct {
	WorldDescription string   `json:"world_description,omitempty"`
	Themes           []string `json:"themes,omitempty"`
	ResourceTypes    []string `json:"resource_types,omitempty"`
	FieldContext     string   `json:"field_context,omitempty"`
}
