package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNIK(t *testing.T) {
	assert.NoError(t, ValidateNIK("3174012345678901"))
	assert.Error(t, ValidateNIK("317401234567890"), "15 digits")
	assert.Error(t, ValidateNIK("31740123456789012"), "17 digits")
	assert.Error(t, ValidateNIK("31740123456789AB"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ppk@kemkes.go.id"))
	assert.Error(t, ValidateEmail("ppk@"))
	assert.Error(t, ValidateEmail("not an email"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+62 812-3456-7890"))
	assert.NoError(t, ValidatePhone("081234567890"))
	assert.Error(t, ValidatePhone("12"))
	assert.Error(t, ValidatePhone("phone"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Dinas Kesehatan", SanitizeString("  Dinas\x00 Kesehatan\x7f "))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
}

func TestNewValidator(t *testing.T) {
	type sample struct {
		NIK   string `validate:"required,nik"`
		Phone string `validate:"required,phone"`
	}

	v := NewValidator()
	assert.NoError(t, v.Struct(sample{NIK: "3174012345678901", Phone: "081234567890"}))
	assert.Error(t, v.Struct(sample{NIK: "123", Phone: "081234567890"}))
	assert.Error(t, v.Struct(sample{NIK: "3174012345678901", Phone: "x"}))
}
