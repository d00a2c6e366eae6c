package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/rs/zerolog"
)

// Built-in template names. A user-defined "custom" slot may be saved
// alongside them.
const (
	NameBirthday = "birthday"
	NameExpiry   = "expiry"
	NameCustom   = "custom"
)

const defaultBirthday = `🎉 Happy Birthday {name}! 🎂

We hope you're enjoying your special day.

📘 Passport Number: {passport}
📅 Expiry Date: {expiry}

Have you renewed your passport yet? If not, we can help you with the renewal process hassle-free. ✈️🛂

Contact us today!
- Your Travel Team`

const defaultExpiry = `⚠️ Passport Expiration Alert ⚠️

Hello {name},

This is a friendly reminder that your passport will expire in {days_left} days.

📘 Passport Number: {passport}
📅 Expiry Date: {expiry}

We can help you with the renewal process hassle-free. Don't wait until the last minute!

Contact us today for assistance.
- Your Travel Team`

// Defaults returns the built-in template pair.
func Defaults() map[string]string {
	return map[string]string{
		NameBirthday: defaultBirthday,
		NameExpiry:   defaultExpiry,
	}
}

// Store persists message templates as a flat name-to-text JSON mapping at a
// fixed path. A missing or corrupt file falls back to the built-in defaults.
type Store struct {
	mu   sync.RWMutex
	path string
	log  zerolog.Logger
}

// NewStore creates a template store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  zerolog.New(os.Stdout).With().Str("component", "templates").Logger(),
	}
}

// Get returns the persisted templates, or the built-in defaults when the
// file is absent or unparseable. It never fails.
func (s *Store) Get() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Defaults()
	}

	// An empty mapping is valid saved content; only a parse failure or a
	// JSON null falls back to the defaults.
	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil || templates == nil {
		s.log.Warn().Str("path", s.path).Msg("Template file unreadable, using defaults")
		return Defaults()
	}
	return templates
}

// Save overwrites the persisted mapping wholesale. The new content is
// written to a temp file and renamed into place so a crash mid-write leaves
// either the old file or a parseable new one.
func (s *Store) Save(templates map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal templates: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".templates-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write templates: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace template file: %w", err)
	}
	return nil
}

// MissingFieldError reports a placeholder with no matching field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing template field %q", e.Field)
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Render substitutes each {field} occurrence in the template with the
// matching value. A placeholder with no matching field yields a
// MissingFieldError naming it; extra fields are ignored. Template text is
// user-controlled but nothing beyond substitution is evaluated.
func Render(template string, fields map[string]string) (string, error) {
	var missing string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := fields[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return token
		}
		return value
	})

	if missing != "" {
		return "", &MissingFieldError{Field: missing}
	}
	return result, nil
}
