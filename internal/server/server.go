package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"passport-manager/internal/handler"
	"passport-manager/internal/importer"
	"passport-manager/internal/models"
	"passport-manager/internal/query"
	"passport-manager/internal/templates"
)

// maxImportSize bounds uploaded spreadsheets. The datasets this serves are
// a few thousand rows at most.
const maxImportSize = 16 << 20

// Server exposes the dashboard to the external UI over JSON. It serves one
// logical session: no auth, no multi-tenancy.
type Server struct {
	dashboard *handler.Dashboard
	log       zerolog.Logger
	router    chi.Router
}

// New creates the HTTP server around a dashboard session.
func New(dashboard *handler.Dashboard, logger zerolog.Logger) *Server {
	s := &Server{
		dashboard: dashboard,
		log:       logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("Request")
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/import", s.handleImport)
		r.Get("/records", s.handleRecords)
		r.Get("/records/search", s.handleSearch)
		r.Get("/overview", s.handleOverview)
		r.Get("/birthdays/today", s.handleTodaysBirthdays)
		r.Get("/birthdays", s.handleBirthdaysOn)
		r.Get("/expiring", s.handleExpiring)
		r.Get("/templates", s.handleGetTemplates)
		r.Put("/templates", s.handleSaveTemplates)
		r.Post("/templates/preview", s.handlePreview)
		r.Post("/send", s.handleSend)
		r.Post("/send/bulk", s.handleSendBulk)
		r.Post("/send/schedule", s.handleSchedule)
		r.Get("/history", s.handleHistory)
		r.Get("/history/summary", s.handleHistorySummary)
		r.Get("/history/export", s.handleHistoryExport)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	result, err := s.dashboard.Import(file, header.Filename)
	if err != nil {
		var missingErr *importer.MissingColumnsError
		if errors.As(err, &missingErr) || errors.Is(err, importer.ErrNoData) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"total":   result.Total,
		"loaded":  len(result.Records),
		"dropped": result.Dropped,
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	views := make([]handler.RecordView, 0)
	for _, rec := range s.dashboard.Records() {
		views = append(views, s.dashboard.View(rec))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	by := query.SearchField(r.URL.Query().Get("by"))
	if by == "" {
		by = query.SearchByName
	}
	results := s.dashboard.Search(by, r.URL.Query().Get("q"))
	s.writeJSON(w, http.StatusOK, emptyIfNil(results))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.Overview())
}

func (s *Server) handleTodaysBirthdays(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, emptyIfNil(s.dashboard.TodaysBirthdays()))
}

func (s *Server) handleBirthdaysOn(w http.ResponseWriter, r *http.Request) {
	day, err1 := strconv.Atoi(r.URL.Query().Get("day"))
	month, err2 := strconv.Atoi(r.URL.Query().Get("month"))
	if err1 != nil || err2 != nil || day < 1 || day > 31 || month < 1 || month > 12 {
		s.writeError(w, http.StatusBadRequest, errors.New("day and month query parameters are required"))
		return
	}
	s.writeJSON(w, http.StatusOK, emptyIfNil(s.dashboard.BirthdaysOn(day, month)))
}

func (s *Server) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	s.writeJSON(w, http.StatusOK, emptyIfNil(s.dashboard.Expiring(days)))
}

func (s *Server) handleGetTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.Templates())
}

func (s *Server) handleSaveTemplates(w http.ResponseWriter, r *http.Request) {
	var m map[string]string
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dashboard.SaveTemplates(m); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	preview, err := s.dashboard.PreviewTemplate(req.Template)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"preview": preview})
}

type sendRequest struct {
	Record   models.PassportRecord `json:"record"`
	Template string                `json:"template"`
	Channel  string                `json:"channel"`
	Hour     int                   `json:"hour"`
	Minute   int                   `json:"minute"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		link string
		err  error
	)
	if req.Channel == string(models.ChannelExpiry) {
		link, err = s.dashboard.SendExpiryReminder(req.Record)
	} else {
		link, err = s.dashboard.SendBirthday(req.Record, req.Template)
	}

	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, handler.ErrInvalidPhone) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

func (s *Server) handleSendBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Template == "" {
		req.Template = templates.NameBirthday
	}

	result, err := s.dashboard.SendBulk(nil, req.Template)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	msg, err := s.dashboard.ScheduleSend(req.Record, req.Template, req.Hour, req.Minute)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, handler.ErrInvalidPhone) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.History())
}

func (s *Server) handleHistorySummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.HistorySummary())
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard.ExportHistoryCSV()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="notification_history.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write csv export")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.Stats())
}

func emptyIfNil(views []handler.RecordView) []handler.RecordView {
	if views == nil {
		return []handler.RecordView{}
	}
	return views
}
