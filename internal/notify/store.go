package notify

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"passport-manager/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS notification_events (
	id      TEXT PRIMARY KEY,
	date    TEXT NOT NULL,
	name    TEXT NOT NULL,
	phone   TEXT NOT NULL,
	channel TEXT NOT NULL,
	status  TEXT NOT NULL
);`

// Store persists notification events in an embedded sqlite database so the
// history survives process restarts. The log works without one.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the event database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event table: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert appends one event row.
func (s *Store) Insert(event models.NotificationEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO notification_events (id, date, name, phone, channel, status) VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID.String(),
		event.Date.Format(time.RFC3339),
		event.Name,
		event.Phone,
		string(event.Channel),
		string(event.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// LoadAll returns every persisted event in insertion order.
func (s *Store) LoadAll() ([]models.NotificationEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, date, name, phone, channel, status FROM notification_events ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.NotificationEvent
	for rows.Next() {
		var (
			id, date, channel, status string
			event                     models.NotificationEvent
		)
		if err := rows.Scan(&id, &date, &event.Name, &event.Phone, &channel, &status); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if parsed, err := uuid.Parse(id); err == nil {
			event.ID = parsed
		}
		if parsed, err := time.Parse(time.RFC3339, date); err == nil {
			event.Date = parsed
		}
		event.Channel = models.Channel(channel)
		event.Status = models.Status(status)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
