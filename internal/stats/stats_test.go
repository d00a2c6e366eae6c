package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"passport-manager/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyBirthdays(t *testing.T) {
	records := []models.PassportRecord{
		{Name: "A", DateOfBirth: date(1990, 1, 5)},
		{Name: "B", DateOfBirth: date(1985, 1, 20)},
		{Name: "C", DateOfBirth: date(1970, 12, 31)},
	}

	counts := MonthlyBirthdays(records)
	assert.Equal(t, 2, counts[0])
	assert.Equal(t, 1, counts[11])
	assert.Equal(t, 0, counts[5])
}

func TestExpiryDistribution(t *testing.T) {
	now := date(2024, 6, 1)
	expired := date(2024, 5, 1)
	in10 := date(2024, 6, 11)
	in60 := date(2024, 7, 31)
	in120 := date(2024, 9, 29)
	in365 := date(2025, 6, 1)

	records := []models.PassportRecord{
		{Name: "Expired", DateOfBirth: date(1990, 1, 1), ExpiryDate: &expired},
		{Name: "Soon", DateOfBirth: date(1990, 1, 1), ExpiryDate: &in10},
		{Name: "Quarter", DateOfBirth: date(1990, 1, 1), ExpiryDate: &in60},
		{Name: "HalfYear", DateOfBirth: date(1990, 1, 1), ExpiryDate: &in120},
		{Name: "NextYear", DateOfBirth: date(1990, 1, 1), ExpiryDate: &in365},
		{Name: "None", DateOfBirth: date(1990, 1, 1)},
	}

	b := ExpiryDistribution(records, now)
	assert.Equal(t, ExpiryBuckets{
		Expired:   1,
		Within30:  1,
		Within90:  1,
		Within180: 1,
		Beyond180: 1,
		NoExpiry:  1,
	}, b)
}

func TestHistoryCounts(t *testing.T) {
	events := []models.NotificationEvent{
		{Channel: models.ChannelBirthday, Status: models.StatusSent},
		{Channel: models.ChannelBirthday, Status: models.StatusSent},
		{Channel: models.ChannelBulk, Status: models.StatusLinkGenerated},
		{Channel: models.ChannelExpiry, Status: models.StatusFailed},
	}

	byStatus := HistoryByStatus(events)
	assert.Equal(t, 2, byStatus[models.StatusSent])
	assert.Equal(t, 1, byStatus[models.StatusFailed])
	assert.Equal(t, 1, byStatus[models.StatusLinkGenerated])

	byChannel := HistoryByChannel(events)
	assert.Equal(t, 2, byChannel[models.ChannelBirthday])
	assert.Equal(t, 1, byChannel[models.ChannelBulk])
	assert.Equal(t, 1, byChannel[models.ChannelExpiry])
}
