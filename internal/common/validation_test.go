package common

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		rules []ValidationRule
		ok    bool
	}{
		{"required string", "deca.pdf", []ValidationRule{Required}, true},
		{"blank string", "  ", []ValidationRule{Required}, false},
		{"nil value", nil, []ValidationRule{Required}, false},
		{"empty bytes", []byte{}, []ValidationRule{Required}, false},
		{"bytes", []byte("%PDF"), []ValidationRule{Required}, true},
		{"short enough", "abc", []ValidationRule{MaxLength(3)}, true},
		{"too long", "abcd", []ValidationRule{MaxLength(3)}, false},
		{"runes not bytes", "ñññ", []ValidationRule{MaxLength(3)}, true},
		{"empty date", "", []ValidationRule{ISODate}, true},
		{"iso date", "2025-02-03", []ValidationRule{ISODate}, true},
		{"spanish date", "03/02/2025", []ValidationRule{ISODate}, false},
		{"impossible date", "2025-02-31", []ValidationRule{ISODate}, false},
		{"unpadded date", "2025-2-3", []ValidationRule{ISODate}, false},
		{"not a string", 42, []ValidationRule{ISODate}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator().Field("f", tt.value, tt.rules...)
			assert.Equal(t, !tt.ok, v.HasErrors())
		})
	}
}

func TestValidateAndReturnError(t *testing.T) {
	require.NoError(t, ValidateAndReturnError(NewValidator().Field("name", "a.pdf", Required)))

	v := NewValidator().
		Field("name", "", Required).
		Field("from_date", "01/02/2025", ISODate)
	err := ValidateAndReturnError(v)
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Contains(t, st.Message(), "'name'")
	assert.Contains(t, st.Message(), "'from_date'")
	assert.Len(t, v.Errors(), 2)
}

func TestValidateStruct(t *testing.T) {
	type cfg struct {
		Driver string `validate:"oneof=csv sqlite postgres"`
	}
	require.NoError(t, ValidateStruct(cfg{Driver: "csv"}))

	err := ValidateStruct(cfg{Driver: "mysql"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, strings.Contains(err.Error(), "Driver"))
}
