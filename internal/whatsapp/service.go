package whatsapp

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"passport-manager/internal/models"
	"passport-manager/internal/notify"
	"passport-manager/internal/phone"
	"passport-manager/internal/query"
	"passport-manager/internal/templates"
)

// displayDateFormat is how dates appear inside rendered messages.
const displayDateFormat = "02-01-2006"

// Service builds WhatsApp deep links and records every attempt in the
// notification log. There is no messaging protocol client behind it; the
// link is the whole "send".
type Service struct {
	log    zerolog.Logger
	events *notify.Log
	clock  query.Clock
}

// NewService creates a WhatsApp dispatch service.
func NewService(events *notify.Log, clock query.Clock) *Service {
	return &Service{
		log:    zerolog.New(os.Stdout).With().Str("component", "whatsapp").Logger(),
		events: events,
		clock:  clock,
	}
}

// Send builds a deep link for an immediate message and logs the redirect.
// The caller is responsible for validating the phone number first.
func (s *Service) Send(name, phoneNumber, message string) (string, error) {
	link := BuildLink(phoneNumber, message)

	s.log.Debug().Str("phone", phoneNumber).Int("length", len(message)).Msg("Built WhatsApp link")

	err := s.events.Append(models.NotificationEvent{
		Date:    s.clock.Now(),
		Name:    name,
		Phone:   phoneNumber,
		Channel: models.ChannelWhatsApp,
		Status:  models.StatusRedirected,
	})
	if err != nil {
		return "", err
	}
	return link, nil
}

// ScheduledMessage is a logged intent to send at a later time. No timer
// fires it; the operator must open the link at the scheduled time.
type ScheduledMessage struct {
	Link string    `json:"link"`
	At   time.Time `json:"at"`
}

// Schedule records the intent to send at the next occurrence of hh:mm
// (tomorrow if that time has already passed today) and returns the link to
// use then.
func (s *Service) Schedule(name, phoneNumber, message string, hour, minute int) (*ScheduledMessage, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid schedule time %02d:%02d", hour, minute)
	}

	now := s.clock.Now()
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}

	err := s.events.Append(models.NotificationEvent{
		Date:    at,
		Name:    name,
		Phone:   phoneNumber,
		Channel: models.ChannelScheduled,
		Status:  models.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("phone", phoneNumber).Time("at", at).Msg("Message scheduled (manual send)")

	return &ScheduledMessage{Link: BuildLink(phoneNumber, message), At: at}, nil
}

// BulkItem is the outcome for one recipient of a bulk run.
type BulkItem struct {
	Record models.PassportRecord `json:"record"`
	Link   string                `json:"link,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// BulkResult summarizes a bulk link-generation run.
type BulkResult struct {
	OK     int        `json:"ok"`
	Failed int        `json:"failed"`
	Items  []BulkItem `json:"items"`
}

// BulkBuild renders the template and builds a link per record. A record
// with missing template fields or an unusable phone number counts as
// failed and is logged with the error text; it never stops the rest of the
// batch. Every record produces exactly one log entry.
func (s *Service) BulkBuild(records []models.PassportRecord, template string) (*BulkResult, error) {
	now := s.clock.Now()
	result := &BulkResult{}

	for _, rec := range records {
		item := BulkItem{Record: rec}

		link, err := s.buildOne(rec, template, now)
		event := models.NotificationEvent{
			Date:    now,
			Name:    rec.Name,
			Phone:   phone.FormatForWhatsApp(rec.PhoneRaw),
			Channel: models.ChannelBulk,
		}

		if err != nil {
			result.Failed++
			item.Error = err.Error()
			event.Status = models.Status("Error: " + err.Error())
		} else {
			result.OK++
			item.Link = link
			event.Status = models.StatusLinkGenerated
		}

		if appendErr := s.events.Append(event); appendErr != nil {
			return nil, appendErr
		}
		result.Items = append(result.Items, item)
	}

	s.log.Info().Int("ok", result.OK).Int("failed", result.Failed).Msg("Bulk links generated")
	return result, nil
}

func (s *Service) buildOne(rec models.PassportRecord, template string, now time.Time) (string, error) {
	validation := phone.Validate(phone.Clean(rec.PhoneRaw))
	if !validation.OK() {
		return "", fmt.Errorf("%s", validation)
	}

	message, err := templates.Render(template, RecordFields(rec, now))
	if err != nil {
		return "", err
	}
	return BuildLink(validation.Normalized, message), nil
}

// RecordFields maps a record to template placeholder values. Absent
// passport or expiry values render as "N/A"; {days_left} is present only
// for records with an expiry date.
func RecordFields(rec models.PassportRecord, now time.Time) map[string]string {
	fields := map[string]string{
		"name":     rec.Name,
		"passport": "N/A",
		"expiry":   "N/A",
	}

	if rec.PassportNumber != "" {
		fields["passport"] = rec.PassportNumber
	}
	if rec.HasExpiry() {
		fields["expiry"] = rec.ExpiryDate.Format(displayDateFormat)
		fields["days_left"] = strconv.Itoa(query.DaysLeft(*rec.ExpiryDate, now))
	}
	if rec.PhoneRaw != "" {
		fields["phone"] = phone.FormatForWhatsApp(rec.PhoneRaw)
	}
	return fields
}
