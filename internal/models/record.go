package models

import "time"

// PassportRecord represents one imported client passport entry.
// Records are created in bulk at import time and never edited afterwards;
// a new import replaces the whole working set.
type PassportRecord struct {
	Name           string     `json:"name"`
	DateOfBirth    time.Time  `json:"date_of_birth"`
	PassportNumber string     `json:"passport_number,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	PhoneRaw       string     `json:"phone_raw,omitempty"`
}

// HasExpiry reports whether the record carries an expiry date.
// Records without one are excluded from expiry queries.
func (r PassportRecord) HasExpiry() bool {
	return r.ExpiryDate != nil
}
