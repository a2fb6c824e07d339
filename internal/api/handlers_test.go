package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/eventstream"
	"calendar-backend/internal/storage/memorystore"
)

type noopRenderer struct{}

func (noopRenderer) Render(ctx context.Context, config any) (string, error) { return "<html></html>", nil }

type noopStreamer struct{}

func (noopStreamer) Stream(ctx context.Context, calendarID uuid.UUID, lastEventID *uint64, emit func(eventstream.Frame) error) error {
	return nil
}

func newTestHandlers() *Handlers {
	return New(memorystore.New(), noopRenderer{}, noopStreamer{}, nil, nil)
}

// chiRequest wraps req in a chi route context with the given URL params,
// mirroring what Router.Setup's mux would populate before dispatch.
func chiRequest(method, target string, body []byte, params map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateCalendar_Success(t *testing.T) {
	h := newTestHandlers()
	body, _ := json.Marshal(CreateCalendarRequest{Name: "Personal", Color: "#ff0000"})
	req := chiRequest(http.MethodPost, "/calendars", body, nil)
	rec := httptest.NewRecorder()

	h.CreateCalendar(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var cal calendarmodel.Calendar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cal))
	assert.Equal(t, "Personal", cal.Name)
	assert.NotEqual(t, uuid.Nil, cal.ID)
}

func TestCreateCalendar_EmptyNameRejected(t *testing.T) {
	h := newTestHandlers()
	body, _ := json.Marshal(CreateCalendarRequest{Name: ""})
	req := chiRequest(http.MethodPost, "/calendars", body, nil)
	rec := httptest.NewRecorder()

	h.CreateCalendar(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCalendar_InvalidColorRejected(t *testing.T) {
	h := newTestHandlers()
	body, _ := json.Marshal(CreateCalendarRequest{Name: "Work", Color: "not-a-color"})
	req := chiRequest(http.MethodPost, "/calendars", body, nil)
	rec := httptest.NewRecorder()

	h.CreateCalendar(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCalendar_NotFound(t *testing.T) {
	h := newTestHandlers()
	missing := uuid.New()
	req := chiRequest(http.MethodGet, "/calendars/"+missing.String(), nil, map[string]string{"id": missing.String()})
	rec := httptest.NewRecorder()

	h.GetCalendar(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCalendar_InvalidUUID(t *testing.T) {
	h := newTestHandlers()
	req := chiRequest(http.MethodGet, "/calendars/garbage", nil, map[string]string{"id": "garbage"})
	rec := httptest.NewRecorder()

	h.GetCalendar(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntryLifecycle_CreateGetUpdateDelete(t *testing.T) {
	h := newTestHandlers()

	calBody, _ := json.Marshal(CreateCalendarRequest{Name: "Personal"})
	createCalReq := chiRequest(http.MethodPost, "/calendars", calBody, nil)
	createCalRec := httptest.NewRecorder()
	h.CreateCalendar(createCalRec, createCalReq)
	require.Equal(t, http.StatusCreated, createCalRec.Code)
	var cal calendarmodel.Calendar
	require.NoError(t, json.Unmarshal(createCalRec.Body.Bytes(), &cal))

	entryID := uuid.New()
	entryBody, _ := json.Marshal(EntryRequest{
		Title:     "Standup",
		Kind:      calendarmodel.KindTimed,
		StartDate: "2026-08-01",
		EndDate:   "2026-08-01",
		StartTime: "09:00",
		EndTime:   "09:15",
	})
	createEntryReq := chiRequest(http.MethodPost, "/calendars/"+cal.ID.String()+"/entries/"+entryID.String(), entryBody,
		map[string]string{"id": cal.ID.String(), "entryId": entryID.String()})
	createEntryRec := httptest.NewRecorder()
	h.CreateEntry(createEntryRec, createEntryReq)
	require.Equal(t, http.StatusCreated, createEntryRec.Code)

	listReq := chiRequest(http.MethodGet, "/calendars/"+cal.ID.String()+"/entries?start=2026-08-01&end=2026-08-01", nil,
		map[string]string{"id": cal.ID.String()})
	listReq.URL.RawQuery = "start=2026-08-01&end=2026-08-01"
	listRec := httptest.NewRecorder()
	h.GetEntriesByCalendar(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)
	var entries []calendarmodel.Entry
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Standup", entries[0].Title)

	updateBody, _ := json.Marshal(EntryRequest{
		Title:     "Standup (moved)",
		Kind:      calendarmodel.KindTimed,
		StartDate: "2026-08-01",
		EndDate:   "2026-08-01",
		StartTime: "09:30",
		EndTime:   "09:45",
	})
	updateReq := chiRequest(http.MethodPut, "/calendars/"+cal.ID.String()+"/entries/"+entryID.String(), updateBody,
		map[string]string{"id": cal.ID.String(), "entryId": entryID.String()})
	updateRec := httptest.NewRecorder()
	h.UpdateEntry(updateRec, updateReq)
	assert.Equal(t, http.StatusOK, updateRec.Code)

	deleteReq := chiRequest(http.MethodDelete, "/calendars/"+cal.ID.String()+"/entries/"+entryID.String(), nil,
		map[string]string{"id": cal.ID.String(), "entryId": entryID.String()})
	deleteRec := httptest.NewRecorder()
	h.DeleteEntry(deleteRec, deleteReq)
	assert.Equal(t, http.StatusNoContent, deleteRec.Code)
}

func TestCreateEntry_InvalidKindDateInvariantRejected(t *testing.T) {
	h := newTestHandlers()
	calBody, _ := json.Marshal(CreateCalendarRequest{Name: "Personal"})
	createCalReq := chiRequest(http.MethodPost, "/calendars", calBody, nil)
	createCalRec := httptest.NewRecorder()
	h.CreateCalendar(createCalRec, createCalReq)
	var cal calendarmodel.Calendar
	require.NoError(t, json.Unmarshal(createCalRec.Body.Bytes(), &cal))

	entryID := uuid.New()
	// AllDay requires StartDate == EndDate; this violates that invariant.
	entryBody, _ := json.Marshal(EntryRequest{
		Title:     "Conference",
		Kind:      calendarmodel.KindAllDay,
		StartDate: "2026-08-01",
		EndDate:   "2026-08-03",
	})
	req := chiRequest(http.MethodPost, "/calendars/"+cal.ID.String()+"/entries/"+entryID.String(), entryBody,
		map[string]string{"id": cal.ID.String(), "entryId": entryID.String()})
	rec := httptest.NewRecorder()
	h.CreateEntry(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestHandlers()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Healthz(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
