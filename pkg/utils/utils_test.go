package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPage(t *testing.T) {
	p, pp := ClampPage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, DefaultPerPage, pp)

	p, pp = ClampPage(3, 1000)
	assert.Equal(t, 3, p)
	assert.Equal(t, MaxPerPage, pp)
	assert.Equal(t, 200, Offset(p, pp))
}

func TestGenerateEventCode(t *testing.T) {
	code := GenerateEventCode()
	assert.Len(t, code, EventCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(codeCharset, r))
	}
}

func TestValidatorHexColor(t *testing.T) {
	type theme struct {
		Color string `validate:"hexcolor6"`
	}
	v := NewValidator()
	assert.NoError(t, v.Struct(theme{Color: "#a1b2c3"}))
	assert.Error(t, v.Struct(theme{Color: "red"}))
}
