package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain digits", "9876543210", "9876543210"},
		{"formatted", "+91 98765-43210", "919876543210"},
		{"parentheses and spaces", " (987) 654 3210 ", "9876543210"},
		{"no digits at all", "n/a", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		digits     string
		wantStatus Status
		wantString string
	}{
		{"empty", "", StatusEmpty, "No phone number"},
		{"valid starting 9", "9876543210", StatusValid, "Valid (+919876543210)"},
		{"valid starting 8", "8123456789", StatusValid, "Valid (+918123456789)"},
		{"valid starting 7", "7000000000", StatusValid, "Valid (+917000000000)"},
		{"wrong leading digit", "6876543210", StatusInvalid, "Invalid phone number"},
		{"too short", "987654321", StatusInvalid, "Invalid phone number"},
		{"too long", "98765432101", StatusInvalid, "Invalid phone number"},
		{"with country code already", "919876543210", StatusInvalid, "Invalid phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.digits)
			assert.Equal(t, tt.wantStatus, v.Status)
			assert.Equal(t, tt.wantString, v.String())
			assert.Equal(t, tt.wantStatus == StatusValid, v.OK())
		})
	}
}

// TestValidateCleanedInput covers the composed pipeline: any raw string is
// first cleaned, then classified.
func TestValidateCleanedInput(t *testing.T) {
	assert.Equal(t, "No phone number", Validate(Clean("---")).String())
	assert.Equal(t, "Valid (+919876543210)", Validate(Clean("+98 765 432 10")).String())
	assert.Equal(t, "Invalid phone number", Validate(Clean("+91 98765 43210")).String())
}

func TestFormatForWhatsApp(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   string
	}{
		{"bare national number", "9876543210", "+919876543210"},
		{"with country code digits", "919876543210", "+919876543210"},
		{"already international", "+919876543210", "+919876543210"},
		{"unknown format left alone", "12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForWhatsApp(tt.number))
		})
	}
}
