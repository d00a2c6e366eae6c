package query

import (
	"sort"
	"strings"
	"time"

	"passport-manager/internal/models"
)

// TodaysBirthdays returns records whose date of birth falls on today's day
// and month, year ignored. Input order is preserved.
func TodaysBirthdays(records []models.PassportRecord, today time.Time) []models.PassportRecord {
	return BirthdaysOn(records, today.Day(), today.Month())
}

// BirthdaysOn returns records whose date of birth falls on the given day and
// month, year ignored. A Feb 29 birth date matches only an actual Feb 29
// query date; there is no remapping to Feb 28 or Mar 1.
func BirthdaysOn(records []models.PassportRecord, day int, month time.Month) []models.PassportRecord {
	var result []models.PassportRecord
	for _, r := range records {
		if r.DateOfBirth.Day() == day && r.DateOfBirth.Month() == month {
			result = append(result, r)
		}
	}
	return result
}

// ExpiringWithin returns records whose expiry date is strictly after now and
// no later than now plus the given number of days. Already-expired records
// and records without an expiry date are excluded. The result is sorted
// ascending by expiry date, stable for equal dates.
func ExpiringWithin(records []models.PassportRecord, now time.Time, days int) []models.PassportRecord {
	limit := now.AddDate(0, 0, days)

	var result []models.PassportRecord
	for _, r := range records {
		if !r.HasExpiry() {
			continue
		}
		if r.ExpiryDate.After(now) && !r.ExpiryDate.After(limit) {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ExpiryDate.Before(*result[j].ExpiryDate)
	})
	return result
}

// DaysLeft returns the number of whole days from now until expiry.
func DaysLeft(expiry, now time.Time) int {
	return int(expiry.Sub(now).Hours() / 24)
}

// SearchField selects which record field Search matches against.
type SearchField string

const (
	SearchByName     SearchField = "name"
	SearchByPassport SearchField = "passport"
	SearchByPhone    SearchField = "phone"
)

// Search returns records whose selected field contains the term,
// case-insensitively. An empty term matches nothing.
func Search(records []models.PassportRecord, field SearchField, term string) []models.PassportRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	var result []models.PassportRecord
	for _, r := range records {
		var value string
		switch field {
		case SearchByName:
			value = r.Name
		case SearchByPassport:
			value = r.PassportNumber
		case SearchByPhone:
			value = r.PhoneRaw
		default:
			return nil
		}
		if strings.Contains(strings.ToLower(value), term) {
			result = append(result, r)
		}
	}
	return result
}

// Age returns the age in completed years at the given date. For a Feb 29
// birth date in a non-leap year the birthday is taken as Feb 28; this is a
// deliberate, historical policy (not rolling to Mar 1) and is unrelated to
// birthday matching, which never remaps leap days.
func Age(dob, today time.Time) int {
	day := dob.Day()
	if dob.Month() == time.February && day == 29 && !isLeapYear(today.Year()) {
		day = 28
	}

	birthday := time.Date(today.Year(), dob.Month(), day, 0, 0, 0, 0, today.Location())
	age := today.Year() - dob.Year()
	if birthday.After(today) {
		age--
	}
	return age
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
