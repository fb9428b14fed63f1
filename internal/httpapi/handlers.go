package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/personal-calendar/internal/application"
	"github.com/example/personal-calendar/internal/event"
	"github.com/example/personal-calendar/internal/ics"
	"github.com/example/personal-calendar/internal/metadata"
	"github.com/example/personal-calendar/internal/recurrence"
)

type calendarService interface {
	OccurrencesOn(date time.Time) []application.Occurrence
	AddEvent(ctx context.Context, input application.EventInput) (application.Occurrence, error)
	AddRule(ctx context.Context, input application.RuleInput) (application.Occurrence, error)
	DeleteOccurrence(ctx context.Context, date time.Time, id string) error
	DeleteSeries(ctx context.Context, id string) error
	DeleteSeriesFrom(ctx context.Context, date time.Time, id string) error
	DetachOccurrence(ctx context.Context, date time.Time, ruleID string, input application.DetailsInput) (application.Occurrence, error)
	EditEvent(ctx context.Context, date time.Time, id string, input application.DetailsInput) (application.Occurrence, error)
	EditSeries(ctx context.Context, id string, input application.DetailsInput) (application.Occurrence, error)
	Search(keyword string) []application.Occurrence
}

// CalendarHandler serves the calendar API.
type CalendarHandler struct {
	service   calendarService
	metadata  metadata.Provider
	responder responder
}

// NewCalendarHandler wires the service and day-metadata provider into an
// HTTP handler set.
func NewCalendarHandler(service calendarService, provider metadata.Provider, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, metadata: provider, responder: newResponder(logger)}
}

// Day renders the occurrences and day metadata for a single date.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request, dateKey string) {
	date, err := recurrence.ParseDateKey(dateKey)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	resp := dayResponse{
		Date:        dateKey,
		Occurrences: toOccurrenceDTOs(h.service.OccurrencesOn(date)),
	}
	if h.metadata != nil {
		if meta, err := h.metadata.Metadata(date); err == nil {
			resp.Metadata = toMetadataDTO(meta)
		}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// CreateEvent stores a one-off event.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	date, err := recurrence.ParseDateKey(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	occ, err := h.service.AddEvent(r.Context(), application.EventInput{
		Date:        date,
		Title:       req.Title,
		Category:    event.Category(req.Category),
		Description: req.Description,
		Slot:        event.TimeSlot(req.TimeSlot),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toOccurrenceDTO(occ))
}

// CreateRule stores a recurrence rule.
func (h *CalendarHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	date, err := recurrence.ParseDateKey(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	occ, err := h.service.AddRule(r.Context(), application.RuleInput{
		Date:        date,
		Title:       req.Title,
		Category:    event.Category(req.Category),
		Description: req.Description,
		Slot:        event.TimeSlot(req.TimeSlot),
		Pattern:     req.Pattern.toPattern(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toOccurrenceDTO(occ))
}

// DeleteOccurrence removes a single event or excludes one date from a rule.
func (h *CalendarHandler) DeleteOccurrence(w http.ResponseWriter, r *http.Request, dateKey, id string) {
	date, err := recurrence.ParseDateKey(dateKey)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	if err := h.service.DeleteOccurrence(r.Context(), date, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// DeleteRule removes a whole series, or truncates it when the from query
// parameter names a date.
func (h *CalendarHandler) DeleteRule(w http.ResponseWriter, r *http.Request, id string) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	if from == "" {
		if err := h.service.DeleteSeries(r.Context(), id); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
		return
	}

	date, err := recurrence.ParseDateKey(from)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	if err := h.service.DeleteSeriesFrom(r.Context(), date, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// DetachOccurrence converts one day of a rule into an independent event.
func (h *CalendarHandler) DetachOccurrence(w http.ResponseWriter, r *http.Request, id string) {
	var req detachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	date, err := recurrence.ParseDateKey(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	occ, err := h.service.DetachOccurrence(r.Context(), date, id, req.detailsInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toOccurrenceDTO(occ))
}

// UpdateEvent replaces the details of a stored event.
func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request, dateKey, id string) {
	date, err := recurrence.ParseDateKey(dateKey)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	occ, err := h.service.EditEvent(r.Context(), date, id, req.detailsInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOccurrenceDTO(occ))
}

// UpdateRule replaces the details shared by every occurrence of a rule.
func (h *CalendarHandler) UpdateRule(w http.ResponseWriter, r *http.Request, id string) {
	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	occ, err := h.service.EditSeries(r.Context(), id, req.detailsInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOccurrenceDTO(occ))
}

// Search lists the records whose title or description contains the keyword.
func (h *CalendarHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	if keyword == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingQuery)
		return
	}

	results := h.service.Search(keyword)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, searchResponse{
		Keyword: keyword,
		Results: toOccurrenceDTOs(results),
	})
}

// ExportICS streams the requested date range as an iCalendar document.
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	from, err := recurrence.ParseDateKey(r.URL.Query().Get("from"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	to, err := recurrence.ParseDateKey(r.URL.Query().Get("to"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	body, err := ics.Export(h.service.OccurrencesOn, from, to)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write export", "error", err)
	}
}
