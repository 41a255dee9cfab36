package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeTransformParse, "bad transform %q", "rotate(")
	assert.Equal(t, ErrCodeTransformParse, err.Code)
	assert.Equal(t, `TRANSFORM_PARSE: bad transform "rotate("`, err.Error())
	assert.Nil(t, errors.Unwrap(err))

	cause := errors.New("unexpected EOF")
	wrapped := Wrap(ErrCodeInvalidDocument, cause, "parse %s", "map.svg")
	assert.Equal(t, "INVALID_DOCUMENT: parse map.svg: unexpected EOF", wrapped.Error())
	assert.Same(t, cause, errors.Unwrap(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeStyleParse, "inner")
	tests := []struct {
		name string
		err  error
		code Code
		msg  string
	}{
		{"direct", inner, ErrCodeStyleParse, "inner"},
		{"fmt wrapped", fmt.Errorf("merge: %w", inner), ErrCodeStyleParse, "inner"},
		{"outermost code wins", Wrap(ErrCodeUnresolvedClip, inner, "outer"), ErrCodeUnresolvedClip, "outer"},
		{"plain error", errors.New("boom"), "", "boom"},
		{"nil", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			if tt.code != "" {
				assert.True(t, Is(tt.err, tt.code))
			}
			assert.False(t, Is(tt.err, ErrCodeInternal))
			if tt.err != nil {
				assert.Equal(t, tt.msg, UserMessage(tt.err))
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid input", New(ErrCodeInvalidInput, "x"), true},
		{"invalid config", New(ErrCodeInvalidConfig, "x"), true},
		{"invalid path", New(ErrCodeInvalidPath, "x"), true},
		{"wrapped invalid document", fmt.Errorf("read: %w", New(ErrCodeInvalidDocument, "x")), true},
		{"per-node code", New(ErrCodeSingularTransform, "x"), false},
		{"internal", New(ErrCodeInternal, "x"), false},
		{"plain", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInvalid(tt.err))
		})
	}
}
