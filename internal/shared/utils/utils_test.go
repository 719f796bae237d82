package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashJSONIgnoresKeyOrder(t *testing.T) {
	h := FastHasher()
	a, err := h.HashJSON(map[string]any{"view": "PageDetail", "project": "proj_1"})
	require.NoError(t, err)
	b, err := h.HashJSON(map[string]any{"project": "proj_1", "view": "PageDetail"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := h.HashJSON(map[string]any{"project": "proj_2", "view": "PageDetail"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", ShortHash("abc"))
	assert.Equal(t, "01234567", ShortHash("0123456789"))
}

func TestEnvelopeValidator(t *testing.T) {
	v := NewEnvelopeValidator(32)
	assert.Equal(t, 32, v.MaxSize())

	assert.NoError(t, v.Validate([]byte(`{"type":"undo"}`)))
	assert.ErrorIs(t, v.Validate([]byte(`{"type":`)), ErrInvalidJSON)
	assert.ErrorIs(t, v.Validate([]byte(`"`+strings.Repeat("x", 40)+`"`)), ErrTooLarge)

	deep := strings.Repeat("[", MaxJSONDepth+2) + strings.Repeat("]", MaxJSONDepth+2)
	assert.ErrorIs(t, NewEnvelopeValidator(MaxEnvelopeSize).Validate([]byte(deep)), ErrTooDeep)

	edge := strings.Repeat("[", MaxJSONDepth) + strings.Repeat("]", MaxJSONDepth)
	assert.NoError(t, NewEnvelopeValidator(MaxEnvelopeSize).Validate([]byte(edge)))
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"win_01HZX3", false},
		{"proj-landing", false},
		{"", true},
		{"../etc", true},
		{strings.Repeat("a", MaxIDLength+1), true},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id, "window_id")
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidField, tt.id)
		} else {
			assert.NoError(t, err, tt.id)
		}
	}
}

func TestValidateType(t *testing.T) {
	assert.NoError(t, ValidateType("change-active-view"))
	assert.NoError(t, ValidateType("undo"))
	for _, bad := range []string{"Undo", "-undo", "", "undo--redo", strings.Repeat("a", MaxTypeLength+1)} {
		assert.ErrorIs(t, ValidateType(bad), ErrInvalidField, bad)
	}
}
