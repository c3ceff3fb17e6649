package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, 3, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWTToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.OperatorID)
	assert.Equal(t, 3, claims.TokenVersion)

	_, err = ParseJWTToken(token, "other")
	assert.Error(t, err)

	expired, err := GenerateAccessToken(42, 3, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWTToken(expired, "secret")
	assert.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name  string `validate:"required,max=5"`
		Count int    `validate:"min=1"`
		Kind  string `validate:"omitempty,oneof=wheel scratch"`
	}

	assert.NoError(t, ValidateStruct(input{Name: "ok", Count: 1, Kind: "wheel"}))

	err := ValidateStruct(input{Name: "", Count: 0, Kind: "dice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "count must be at least 1")
	assert.Contains(t, err.Error(), "kind must be one of wheel scratch")
}

func TestPlayRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:play:abc:1.2.3.4", PlayRateLimitKey("abc", "1.2.3.4"))
}
