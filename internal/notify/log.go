package notify

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"passport-manager/internal/models"
)

// DateFormat is how event timestamps are rendered in exports.
const DateFormat = "2006-01-02 15:04:05"

// Log is the append-only notification history for one session. Events are
// never mutated or deleted, and there is no deduplication: sending twice
// produces two events. An optional Store persists appended events.
type Log struct {
	mu     sync.RWMutex
	events []models.NotificationEvent
	store  *Store
}

// NewLog creates an in-memory notification log.
func NewLog() *Log {
	return &Log{}
}

// NewPersistentLog creates a log backed by a store, preloading any events
// persisted by earlier sessions.
func NewPersistentLog(store *Store) (*Log, error) {
	events, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load notification history: %w", err)
	}
	return &Log{events: events, store: store}, nil
}

// Append adds one event to the log, assigning an ID if the event has none.
// With a store attached, a failed insert fails the append.
func (l *Log) Append(event models.NotificationEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Insert(event); err != nil {
			return fmt.Errorf("failed to persist event: %w", err)
		}
	}
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of the log in append order.
func (l *Log) Events() []models.NotificationEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := make([]models.NotificationEvent, len(l.events))
	copy(events, l.events)
	return events
}

// Summary holds aggregate counts over the log.
type Summary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Summarize counts events. Only exact "Sent" and "Failed" statuses
// contribute to their counters; every event counts toward the total.
func (l *Log) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{Total: len(l.events)}
	for _, e := range l.events {
		switch e.Status {
		case models.StatusSent:
			s.Sent++
		case models.StatusFailed:
			s.Failed++
		}
	}
	return s
}

// ExportCSV serializes the log as a flat table with the literal column
// order date, name, phone, type, status, header row included.
func (l *Log) ExportCSV() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "name", "phone", "type", "status"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range l.events {
		row := []string{
			e.Date.Format(DateFormat),
			e.Name,
			e.Phone,
			string(e.Channel),
			string(e.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
