package stats

import (
	"time"

	"passport-manager/internal/models"
)

// MonthlyBirthdays counts records by birth month, index 0 = January.
func MonthlyBirthdays(records []models.PassportRecord) [12]int {
	var counts [12]int
	for _, r := range records {
		counts[int(r.DateOfBirth.Month())-1]++
	}
	return counts
}

// ExpiryBuckets groups records by how far away their expiry date is.
type ExpiryBuckets struct {
	Expired   int `json:"expired"`
	Within30  int `json:"within_30"`
	Within90  int `json:"within_90"`
	Within180 int `json:"within_180"`
	Beyond180 int `json:"beyond_180"`
	NoExpiry  int `json:"no_expiry"`
}

// ExpiryDistribution buckets records relative to now. Boundaries are
// inclusive on the upper end, matching ExpiringWithin semantics.
func ExpiryDistribution(records []models.PassportRecord, now time.Time) ExpiryBuckets {
	var b ExpiryBuckets
	for _, r := range records {
		if !r.HasExpiry() {
			b.NoExpiry++
			continue
		}
		switch {
		case !r.ExpiryDate.After(now):
			b.Expired++
		case !r.ExpiryDate.After(now.AddDate(0, 0, 30)):
			b.Within30++
		case !r.ExpiryDate.After(now.AddDate(0, 0, 90)):
			b.Within90++
		case !r.ExpiryDate.After(now.AddDate(0, 0, 180)):
			b.Within180++
		default:
			b.Beyond180++
		}
	}
	return b
}

// HistoryByStatus counts notification events per recorded status.
func HistoryByStatus(events []models.NotificationEvent) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, e := range events {
		counts[e.Status]++
	}
	return counts
}

// HistoryByChannel counts notification events per channel.
func HistoryByChannel(events []models.NotificationEvent) map[models.Channel]int {
	counts := make(map[models.Channel]int)
	for _, e := range events {
		counts[e.Channel]++
	}
	return counts
}
