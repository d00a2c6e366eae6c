package handler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"passport-manager/internal/importer"
	"passport-manager/internal/models"
	"passport-manager/internal/notify"
	"passport-manager/internal/phone"
	"passport-manager/internal/query"
	"passport-manager/internal/stats"
	"passport-manager/internal/templates"
	"passport-manager/internal/whatsapp"
)

// ErrInvalidPhone is returned when a send is attempted for a record whose
// phone number is missing or invalid. Callers should disable sending for
// such records instead of attempting and failing.
var ErrInvalidPhone = errors.New("phone number is not valid for sending")

// Config holds dashboard settings.
type Config struct {
	ExpiryWindowDays int
}

// Dashboard owns the state of one logical user session: the imported
// working set and the notification history. Nothing is shared across
// sessions; create one Dashboard per user.
type Dashboard struct {
	mu       sync.RWMutex
	records  []models.PassportRecord
	imported *importer.Result

	importer  *importer.Importer
	templates *templates.Store
	events    *notify.Log
	whatsapp  *whatsapp.Service
	clock     query.Clock
	log       zerolog.Logger
	cfg       *Config
}

// NewDashboard creates a dashboard session.
func NewDashboard(tstore *templates.Store, events *notify.Log, wa *whatsapp.Service, clock query.Clock, cfg *Config) *Dashboard {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = 90
	}

	return &Dashboard{
		importer:  importer.New(),
		templates: tstore,
		events:    events,
		whatsapp:  wa,
		clock:     clock,
		log:       zerolog.New(os.Stdout).With().Str("component", "dashboard").Logger(),
		cfg:       cfg,
	}
}

// Import loads a tabular file and, on success, replaces the working set.
// On any import error the previous working set is left untouched.
func (d *Dashboard) Import(r io.Reader, filename string) (*importer.Result, error) {
	result, err := d.importer.Import(r, filename)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.records = result.Records
	d.imported = result
	d.mu.Unlock()

	d.log.Info().Str("file", filename).Int("records", len(result.Records)).Msg("Working set replaced")
	return result, nil
}

// ImportFile loads records from a path on disk.
func (d *Dashboard) ImportFile(path string) (*importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return d.Import(f, path)
}

// Records returns a copy of the working set.
func (d *Dashboard) Records() []models.PassportRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]models.PassportRecord, len(d.records))
	copy(records, d.records)
	return records
}

// ClearRecords discards the working set.
func (d *Dashboard) ClearRecords() {
	d.mu.Lock()
	d.records = nil
	d.imported = nil
	d.mu.Unlock()
}

// RecordView pairs a record with derived display data. CanSend tells the
// UI whether to enable the send action for this record.
type RecordView struct {
	models.PassportRecord
	PhoneStatus string `json:"phone_status"`
	CanSend     bool   `json:"can_send"`
	Age         int    `json:"age"`
	DaysLeft    *int   `json:"days_left,omitempty"`
}

// View derives display data for one record.
func (d *Dashboard) View(rec models.PassportRecord) RecordView {
	validation := phone.Validate(phone.Clean(rec.PhoneRaw))
	view := RecordView{
		PassportRecord: rec,
		PhoneStatus:    validation.String(),
		CanSend:        validation.OK(),
		Age:            query.Age(rec.DateOfBirth, d.clock.Now()),
	}
	if rec.HasExpiry() {
		days := query.DaysLeft(*rec.ExpiryDate, d.clock.Now())
		view.DaysLeft = &days
	}
	return view
}

func (d *Dashboard) views(records []models.PassportRecord) []RecordView {
	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, d.View(rec))
	}
	return views
}

// TodaysBirthdays lists records whose birthday is today.
func (d *Dashboard) TodaysBirthdays() []RecordView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.views(query.TodaysBirthdays(d.records, d.clock.Now()))
}

// BirthdaysOn lists records with a birthday on the given day and month.
func (d *Dashboard) BirthdaysOn(day, month int) []RecordView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.views(query.BirthdaysOn(d.records, day, time.Month(month)))
}

// Expiring lists records expiring within the given number of days,
// falling back to the configured window when days is not positive.
func (d *Dashboard) Expiring(days int) []RecordView {
	if days <= 0 {
		days = d.cfg.ExpiryWindowDays
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.views(query.ExpiringWithin(d.records, d.clock.Now(), days))
}

// Search lists records whose field contains the term.
func (d *Dashboard) Search(by query.SearchField, term string) []RecordView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.views(query.Search(d.records, by, term))
}

// Overview summarizes the session for the dashboard landing view.
type Overview struct {
	TotalRecords     int            `json:"total_records"`
	RowsDropped      int            `json:"rows_dropped"`
	BirthdaysToday   int            `json:"birthdays_today"`
	ExpiringSoon     int            `json:"expiring_soon"`
	ExpiryWindowDays int            `json:"expiry_window_days"`
	Notifications    notify.Summary `json:"notifications"`
}

// Overview computes the landing-view counters.
func (d *Dashboard) Overview() Overview {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.clock.Now()
	dropped := 0
	if d.imported != nil {
		dropped = d.imported.Dropped
	}

	return Overview{
		TotalRecords:     len(d.records),
		RowsDropped:      dropped,
		BirthdaysToday:   len(query.TodaysBirthdays(d.records, now)),
		ExpiringSoon:     len(query.ExpiringWithin(d.records, now, d.cfg.ExpiryWindowDays)),
		ExpiryWindowDays: d.cfg.ExpiryWindowDays,
		Notifications:    d.events.Summarize(),
	}
}

// Templates returns the current template mapping.
func (d *Dashboard) Templates() map[string]string {
	return d.templates.Get()
}

// SaveTemplates overwrites the persisted template mapping.
func (d *Dashboard) SaveTemplates(m map[string]string) error {
	return d.templates.Save(m)
}

// PreviewTemplate renders a template against fixed sample data.
func (d *Dashboard) PreviewTemplate(name string) (string, error) {
	sample := map[string]string{
		"name":      "John Doe",
		"passport":  "A1234567",
		"expiry":    "31-12-2030",
		"days_left": "90",
		"phone":     "+919876543210",
	}
	return templates.Render(d.template(name), sample)
}

// template resolves a template name, falling back to the birthday default
// for unknown names.
func (d *Dashboard) template(name string) string {
	tpls := d.templates.Get()
	if text, ok := tpls[name]; ok {
		return text
	}
	return templates.Defaults()[templates.NameBirthday]
}

// SendBirthday renders the template for one record, builds the deep link
// and logs a Birthday/Sent event. A record with an unusable phone number
// is rejected before anything is rendered or logged.
func (d *Dashboard) SendBirthday(rec models.PassportRecord, templateName string) (string, error) {
	if templateName == "" {
		templateName = templates.NameBirthday
	}
	return d.send(rec, templateName, models.ChannelBirthday)
}

// SendExpiryReminder is SendBirthday for the expiry template and channel.
func (d *Dashboard) SendExpiryReminder(rec models.PassportRecord) (string, error) {
	return d.send(rec, templates.NameExpiry, models.ChannelExpiry)
}

func (d *Dashboard) send(rec models.PassportRecord, templateName string, channel models.Channel) (string, error) {
	validation := phone.Validate(phone.Clean(rec.PhoneRaw))
	if !validation.OK() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, validation)
	}

	message, err := templates.Render(d.template(templateName), whatsapp.RecordFields(rec, d.clock.Now()))
	if err != nil {
		return "", err
	}

	link, err := d.whatsapp.Send(rec.Name, validation.Normalized, message)
	if err != nil {
		return "", err
	}

	err = d.events.Append(models.NotificationEvent{
		Date:    d.clock.Now(),
		Name:    rec.Name,
		Phone:   validation.Normalized,
		Channel: channel,
		Status:  models.StatusSent,
	})
	if err != nil {
		return "", err
	}

	d.log.Info().Str("name", rec.Name).Str("channel", string(channel)).Msg("Notification link generated")
	return link, nil
}

// SendBulk generates links for every given record (the whole working set
// when records is nil) using the named template.
func (d *Dashboard) SendBulk(records []models.PassportRecord, templateName string) (*whatsapp.BulkResult, error) {
	if records == nil {
		records = d.Records()
	}
	return d.whatsapp.BulkBuild(records, d.template(templateName))
}

// ScheduleSend logs the intent to message one record at the next hh:mm.
// No timer fires it; the returned link must be opened manually.
func (d *Dashboard) ScheduleSend(rec models.PassportRecord, templateName string, hour, minute int) (*whatsapp.ScheduledMessage, error) {
	validation := phone.Validate(phone.Clean(rec.PhoneRaw))
	if !validation.OK() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPhone, validation)
	}

	message, err := templates.Render(d.template(templateName), whatsapp.RecordFields(rec, d.clock.Now()))
	if err != nil {
		return nil, err
	}
	return d.whatsapp.Schedule(rec.Name, validation.Normalized, message, hour, minute)
}

// History returns the notification events in append order.
func (d *Dashboard) History() []models.NotificationEvent {
	return d.events.Events()
}

// HistorySummary returns aggregate notification counts.
func (d *Dashboard) HistorySummary() notify.Summary {
	return d.events.Summarize()
}

// ExportHistoryCSV serializes the notification history.
func (d *Dashboard) ExportHistoryCSV() ([]byte, error) {
	return d.events.ExportCSV()
}

// Stats bundles the aggregate views of the working set and history.
type Stats struct {
	MonthlyBirthdays [12]int                `json:"monthly_birthdays"`
	Expiry           stats.ExpiryBuckets    `json:"expiry"`
	ByStatus         map[models.Status]int  `json:"by_status"`
	ByChannel        map[models.Channel]int `json:"by_channel"`
}

// Stats computes the aggregates the original dashboard charted.
func (d *Dashboard) Stats() Stats {
	d.mu.RLock()
	records := d.records
	now := d.clock.Now()
	d.mu.RUnlock()

	events := d.events.Events()
	return Stats{
		MonthlyBirthdays: stats.MonthlyBirthdays(records),
		Expiry:           stats.ExpiryDistribution(records, now),
		ByStatus:         stats.HistoryByStatus(events),
		ByChannel:        stats.HistoryByChannel(events),
	}
}
