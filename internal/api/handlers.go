// Package api implements the HTTP surface: calendar and entry CRUD, SSE
// event streaming, and SSR prerendering, mounted on chi. Handlers decode
// the request body, validate it, dispatch directly against the
// storage.Store contract the cached repository decorator satisfies, and
// translate errors through a shared *errors.ErrorHandler.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"calendar-backend/internal/calendarmodel"
	calerrors "calendar-backend/internal/errors"
	"calendar-backend/internal/eventstream"
	"calendar-backend/internal/observability"
	"calendar-backend/internal/storage"
)

// Renderer is the subset of *ssr.Manager the SSR handler depends on.
type Renderer interface {
	Render(ctx context.Context, config any) (string, error)
}

// Streamer is the subset of *eventstream.Producer the events handler
// depends on.
type Streamer interface {
	Stream(ctx context.Context, calendarID uuid.UUID, lastEventID *uint64, emit func(eventstream.Frame) error) error
}

// Handlers holds every dependency the HTTP surface needs. All fields are
// interfaces or concrete library types constructed once in cmd/server and
// passed in, never reached for globally.
type Handlers struct {
	Store     storage.Store
	Renderer  Renderer
	Streamer  Streamer
	Metrics   *observability.Collector
	logger    *zap.Logger
	validate  *validator.Validate
	errorHand *calerrors.ErrorHandler
}

func New(store storage.Store, renderer Renderer, streamer Streamer, metrics *observability.Collector, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Store:    store,
		Renderer: renderer,
		Streamer: streamer,
		Metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
		errorHand: calerrors.NewErrorHandler(calerrors.ErrorHandlerConfig{
			Logger: logger,
		}),
	}
}

// ---- calendars ----

// CreateCalendarRequest is the POST /calendars body.
type CreateCalendarRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty" validate:"max=20000"`
}

func (h *Handlers) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req CreateCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeInvalidInput.String(), "invalid request body: "+err.Error()).Build())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeCalendarValidationFailed.String(), err.Error()).Build())
		return
	}
	if !calendarmodel.ValidColor(req.Color) {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeEntryInvalidColor.String(), "invalid color").Build())
		return
	}

	cal := calendarmodel.Calendar{ID: uuid.New(), Name: req.Name, Color: req.Color, Description: req.Description}
	if err := h.Store.CreateCalendar(r.Context(), cal); err != nil {
		h.errorHand.HandleHTTPError(w, r, translateStorageError(err))
		return
	}
	writeJSON(w, http.StatusCreated, cal)
}

func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, err)
		return
	}
	cal, err := h.Store.GetCalendar(r.Context(), id)
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, translateStorageError(err))
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// ---- entries ----

// EntryRequest is the shared POST/PUT /calendars/{id}/entries/{entryId} body.
type EntryRequest struct {
	Title       string              `json:"title" validate:"required,min=1,max=1000"`
	Kind        calendarmodel.EntryKind `json:"kind" validate:"required,oneof=AllDay Timed Task MultiDay"`
	StartDate   string              `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string              `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime   string              `json:"start_time,omitempty"`
	EndTime     string              `json:"end_time,omitempty"`
	Completed   bool                `json:"completed,omitempty"`
	Description string              `json:"description,omitempty" validate:"max=20000"`
	Location    string              `json:"location,omitempty" validate:"max=1000"`
	Color       string              `json:"color,omitempty"`
}

func (h *Handlers) GetEntriesByCalendar(w http.ResponseWriter, r *http.Request) {
	calID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, err)
		return
	}
	rng := calendarmodel.DateRange{Start: r.URL.Query().Get("start"), End: r.URL.Query().Get("end")}
	if err := rng.Validate(); err != nil {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeEntryInvalidDateRange.String(), err.Error()).Build())
		return
	}
	entries, err := h.Store.GetEntriesByCalendar(r.Context(), calID, rng)
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, translateStorageError(err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	h.upsertEntry(w, r, true)
}

func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	h.upsertEntry(w, r, false)
}

func (h *Handlers) upsertEntry(w http.ResponseWriter, r *http.Request, create bool) {
	calID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, err)
		return
	}
	entryID, err := parseUUIDParam(r, "entryId")
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, err)
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeInvalidInput.String(), "invalid request body: "+err.Error()).Build())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeEntryValidationFailed.String(), err.Error()).Build())
		return
	}

	entry := calendarmodel.Entry{
		ID: entryID, CalendarID: calID, Title: req.Title, Kind: req.Kind,
		StartDate: req.StartDate, EndDate: req.EndDate, StartTime: req.StartTime, EndTime: req.EndTime,
		Completed: req.Completed, Description: req.Description, Location: req.Location, Color: req.Color,
	}
	if err := entry.Validate(); err != nil {
		h.errorHand.HandleHTTPError(w, r, calerrors.Validation(calerrors.CodeEntryValidationFailed.String(), err.Error()).Build())
		return
	}

	status := http.StatusOK
	if create {
		err = h.Store.CreateEntry(r.Context(), entry)
		status = http.StatusCreated
	} else {
		err = h.Store.UpdateEntry(r.Context(), entry)
	}
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, translateStorageError(err))
		return
	}
	writeJSON(w, status, entry)
}

func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseUUIDParam(r, "entryId")
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, err)
		return
	}
	if err := h.Store.DeleteEntry(r.Context(), entryID); err != nil {
		h.errorHand.HandleHTTPError(w, r, translateStorageError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- health ----

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ---- helpers ----

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, calerrors.Validation(calerrors.CodeInvalidUUID.String(), "invalid "+name+": "+raw).Build()
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
