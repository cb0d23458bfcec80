package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("Booking not found"))
	assert.Equal(t, "Booking not found", UserMessage(err, "fallback"))
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, "fallback", UserMessage(errors.New("db down"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(Unauthorized(), "fallback"))
	assert.Equal(t, "fallback", UserMessage(&Error{Kind: ErrGateway}, "fallback"))
}

func TestMessageEntityAndHelperCoexist(t *testing.T) {
	m := Message{Content: "See you at eight"}
	assert.Equal(t, "See you at eight", UserMessage(Validation(m.Content), ""))
}
