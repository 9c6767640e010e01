package exchange

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedMsg string
		expectedCde int
	}{
		{
			name:        "structured body",
			status:      400,
			body:        `{"code":-1121,"msg":"Invalid symbol."}`,
			expectedMsg: "exchange API error: Invalid symbol. (code: -1121)",
			expectedCde: -1121,
		},
		{
			name:        "empty body",
			status:      502,
			body:        "",
			expectedMsg: "exchange API error: Bad Gateway (code: 502)",
			expectedCde: 502,
		},
		{
			name:        "html body",
			status:      403,
			body:        "<html>forbidden</html>",
			expectedMsg: "exchange API error: Forbidden (code: 403)",
			expectedCde: 403,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(tt.status, []byte(tt.body))
			assert.Equal(t, KindAPI, err.Kind)
			assert.Equal(t, tt.expectedMsg, err.Error())
			assert.Equal(t, tt.expectedCde, err.Code)
		})
	}
}

func TestNormalizeError(t *testing.T) {
	assert.Nil(t, normalizeError(nil))

	timeout := normalizeError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, timeout.Kind)
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))

	unknown := normalizeError(errors.New("something odd"))
	assert.Equal(t, KindUnknown, unknown.Kind)
	assert.Equal(t, unknownMessage, unknown.Message)

	original := &Error{Kind: KindAPI, Message: "kept"}
	assert.Same(t, original, normalizeError(fmt.Errorf("outer: %w", original)))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "display", Message(fmt.Errorf("ctx: %w", &Error{Message: "display"})))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "api", KindAPI.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
