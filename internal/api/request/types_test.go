package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiredFields(t *testing.T) {
	assert.NoError(t, CreateGuestRequest{DisplayName: "Alice"}.Validate())
	assert.EqualError(t, CreateGuestRequest{DisplayName: "  "}.Validate(), "display_name is required")

	assert.NoError(t, PickRequest{Word: "fire"}.Validate())
	assert.EqualError(t, PickRequest{}.Validate(), "word is required")
}

func TestValidateReportsEveryMissingCredential(t *testing.T) {
	err := LoginRequest{}.Validate()

	assert.ErrorContains(t, err, "username is required")
	assert.ErrorContains(t, err, "password is required")
	assert.NoError(t, RegisterRequest{Username: "alice", Password: "password123"}.Validate())
}
