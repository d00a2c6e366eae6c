package phone

import "strings"

// CountryCode is the dialing prefix applied to validated numbers.
// Validation here is a fixed-region rule for 10-digit Indian mobile
// numbers, not general E.164 validation. Callers needing other regions
// must supply a different validator.
const CountryCode = "+91"

// Status classifies a cleaned digit string.
type Status int

const (
	StatusEmpty Status = iota
	StatusInvalid
	StatusValid
)

// Validation is the result of validating a cleaned phone number.
// It is computed on demand and never stored on the record.
type Validation struct {
	Status     Status
	Normalized string // "+91XXXXXXXXXX", set only when valid
}

// OK reports whether the number may be used for sending.
func (v Validation) OK() bool {
	return v.Status == StatusValid
}

func (v Validation) String() string {
	switch v.Status {
	case StatusEmpty:
		return "No phone number"
	case StatusValid:
		return "Valid (" + v.Normalized + ")"
	default:
		return "Invalid phone number"
	}
}

// Clean strips every non-digit character from a raw phone number.
// It is a total function: empty input yields empty output.
func Clean(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate classifies a cleaned digit string. A valid number has exactly
// 10 digits and starts with 7, 8 or 9.
func Validate(digits string) Validation {
	if digits == "" {
		return Validation{Status: StatusEmpty}
	}
	if len(digits) != 10 {
		return Validation{Status: StatusInvalid}
	}
	switch digits[0] {
	case '7', '8', '9':
		return Validation{Status: StatusValid, Normalized: CountryCode + digits}
	default:
		return Validation{Status: StatusInvalid}
	}
}

// FormatForWhatsApp normalizes a phone number to international format.
// A bare 10-digit number gets the country code prepended; a 12-digit
// number already starting with 91 only gets the plus sign. Anything else
// is returned unchanged.
func FormatForWhatsApp(number string) string {
	digits := Clean(number)
	switch {
	case len(digits) == 10:
		return CountryCode + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	default:
		return number
	}
}
