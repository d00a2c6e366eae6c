package notify

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passport-manager/internal/models"
)

func event(name string, channel models.Channel, status models.Status) models.NotificationEvent {
	return models.NotificationEvent{
		Date:    time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC),
		Name:    name,
		Phone:   "+919876543210",
		Channel: channel,
		Status:  status,
	}
}

func TestAppendAssignsID(t *testing.T) {
	log := NewLog()
	require.NoError(t, log.Append(event("Asha", models.ChannelBirthday, models.StatusSent)))

	events := log.Events()
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
}

func TestAppendKeepsOrderAndDuplicates(t *testing.T) {
	log := NewLog()
	require.NoError(t, log.Append(event("Asha", models.ChannelBirthday, models.StatusSent)))
	require.NoError(t, log.Append(event("Asha", models.ChannelBirthday, models.StatusSent)))
	require.NoError(t, log.Append(event("Ravi", models.ChannelExpiry, models.StatusFailed)))

	events := log.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "Asha", events[0].Name)
	assert.Equal(t, "Asha", events[1].Name)
	assert.Equal(t, "Ravi", events[2].Name)
}

func TestSummarize(t *testing.T) {
	log := NewLog()
	require.NoError(t, log.Append(event("A", models.ChannelBirthday, models.StatusSent)))
	require.NoError(t, log.Append(event("B", models.ChannelExpiry, models.StatusFailed)))
	require.NoError(t, log.Append(event("C", models.ChannelBulk, models.StatusLinkGenerated)))
	require.NoError(t, log.Append(event("D", models.ChannelWhatsApp, models.StatusRedirected)))

	s := log.Summarize()
	assert.Equal(t, Summary{Total: 4, Sent: 1, Failed: 1}, s)
}

func TestExportCSV(t *testing.T) {
	log := NewLog()
	require.NoError(t, log.Append(event("Asha", models.ChannelBirthday, models.StatusSent)))
	require.NoError(t, log.Append(event("Ravi", models.ChannelBulk, models.StatusLinkGenerated)))

	data, err := log.ExportCSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,name,phone,type,status", lines[0])
	assert.Equal(t, "2024-06-01 12:30:00,Asha,+919876543210,Birthday,Sent", lines[1])
	assert.Equal(t, "2024-06-01 12:30:00,Ravi,+919876543210,Bulk,Link Generated", lines[2])
}

func TestExportCSVEmptyLog(t *testing.T) {
	data, err := NewLog().ExportCSV()
	require.NoError(t, err)
	assert.Equal(t, "date,name,phone,type,status\n", string(data))
}

func TestPersistentLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.db")

	store, err := OpenStore(path)
	require.NoError(t, err)

	log, err := NewPersistentLog(store)
	require.NoError(t, err)
	require.NoError(t, log.Append(event("Asha", models.ChannelBirthday, models.StatusSent)))
	require.NoError(t, log.Append(event("Ravi", models.ChannelExpiry, models.StatusPending)))
	require.NoError(t, store.Close())

	// A later session sees the earlier events in order.
	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	reloaded, err := NewPersistentLog(store)
	require.NoError(t, err)

	events := reloaded.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Asha", events[0].Name)
	assert.Equal(t, models.ChannelBirthday, events[0].Channel)
	assert.Equal(t, models.StatusSent, events[0].Status)
	assert.Equal(t, "Ravi", events[1].Name)
	assert.Equal(t, models.StatusPending, events[1].Status)
}
