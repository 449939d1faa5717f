package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/db"
)

// mockStore implements db.Store in memory.
type mockStore struct {
	events       map[string]*db.EventRecord
	availability map[string]map[string]*db.AvailabilityRecord
	roster       []string
	getAllErr    error
}

func newMockStore() *mockStore {
	return &mockStore{
		events:       map[string]*db.EventRecord{},
		availability: map[string]map[string]*db.AvailabilityRecord{},
	}
}

func (m *mockStore) GetEvent(ctx context.Context, code string) (*db.EventRecord, error) {
	record, ok := m.events[code]
	if !ok {
		return nil, errors.New("event not found")
	}
	return record, nil
}

func (m *mockStore) InsertEvent(ctx context.Context, record *db.EventRecord) error {
	m.events[record.Code] = record
	return nil
}

func (m *mockStore) GetSelfAvailability(ctx context.Context, eventCode, displayName string) (*db.AvailabilityRecord, error) {
	return m.availability[eventCode][displayName], nil
}

func (m *mockStore) SubmitAvailability(ctx context.Context, record *db.AvailabilityRecord) error {
	if m.availability[record.EventCode] == nil {
		m.availability[record.EventCode] = map[string]*db.AvailabilityRecord{}
	}
	if _, seen := m.availability[record.EventCode][record.DisplayName]; !seen {
		m.roster = append(m.roster, record.DisplayName)
	}
	m.availability[record.EventCode][record.DisplayName] = record
	return nil
}

func (m *mockStore) GetAllAvailability(ctx context.Context, eventCode string) (*db.AllAvailability, error) {
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	all := &db.AllAvailability{
		Participants: m.roster,
		Availability: map[string][]string{},
	}
	for _, name := range m.roster {
		record := m.availability[eventCode][name]
		if record == nil {
			continue
		}
		for _, slot := range record.AvailableSlots {
			all.Availability[slot] = append(all.Availability[slot], name)
		}
	}
	return all, nil
}

func newTestServer(store *mockStore) *Server {
	return New(store, zap.NewNop())
}

const createEventBody = `{
	"title": "Team offsite",
	"eventType": "Date",
	"startDate": "2025-01-01",
	"endDate": "2025-01-02",
	"startTime": 540,
	"endTime": 1020,
	"timezone": "UTC"
}`

func createTestEvent(t *testing.T, srv *Server) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/event", strings.NewReader(createEventBody))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Event struct {
			Code string `json:"code"`
		} `json:"event"`
		DayGroups []struct {
			Slots []string `json:"slots"`
		} `json:"dayGroups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Event.Code)
	require.Len(t, resp.DayGroups, 2)
	require.Len(t, resp.DayGroups[0].Slots, 32)
	return resp.Event.Code
}

func TestCreateAndGetEvent(t *testing.T) {
	srv := newTestServer(newMockStore())
	code := createTestEvent(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/event?code="+code, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Event struct {
			Title     string `json:"title"`
			EventType string `json:"eventType"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Team offsite", resp.Event.Title)
	assert.Equal(t, "Date", resp.Event.EventType)
}

func TestGetEvent_MissingCode(t *testing.T) {
	srv := newTestServer(newMockStore())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/event", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEvent_NotFound(t *testing.T) {
	srv := newTestServer(newMockStore())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/event?code=missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	srv := newTestServer(newMockStore())

	body := `{
		"title": "",
		"eventType": "Date",
		"startDate": "2025-01-01",
		"endDate": "2025-01-02",
		"startTime": 540,
		"endTime": 1020,
		"timezone": "Nowhere/Void"
	}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/event", strings.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		FieldErrors []struct {
			Field string `json:"Field"`
			Code  string `json:"Code"`
		} `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.FieldErrors)
}

func TestCreateEvent_MalformedBody(t *testing.T) {
	srv := newTestServer(newMockStore())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/event", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAndFetchAvailability(t *testing.T) {
	store := newMockStore()
	srv := newTestServer(store)
	code := createTestEvent(t, srv)

	body := `{
		"eventCode": "` + code + `",
		"displayName": "Alice",
		"timezone": "UTC",
		"slots": ["2025-01-01T09:00:00Z", "2025-01-01T09:15:00Z"]
	}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/availability", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/availability/self?code="+code+"&name=Alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DisplayName string   `json:"displayName"`
		Slots       []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alice", resp.DisplayName)
	assert.Equal(t, []string{"2025-01-01T09:00:00Z", "2025-01-01T09:15:00Z"}, resp.Slots)
}

func TestGetSelfAvailability_FirstVisitIsEmpty(t *testing.T) {
	srv := newTestServer(newMockStore())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/availability/self?code=evt-1&name=Bob", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Slots)
}

func TestSubmitAvailability_ValidationErrors(t *testing.T) {
	srv := newTestServer(newMockStore())

	body := `{"eventCode": "evt-1", "displayName": "", "timezone": "Nowhere/Void"}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/availability", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetResults(t *testing.T) {
	store := newMockStore()
	srv := newTestServer(store)
	code := createTestEvent(t, srv)

	submissions := map[string][]string{
		"Alice": {"2025-01-01T09:00:00Z", "2025-01-01T09:15:00Z"},
		"Bob":   {"2025-01-01T09:00:00Z"},
	}
	for _, name := range []string{"Alice", "Bob"} {
		payload, err := json.Marshal(map[string]any{
			"eventCode":   code,
			"displayName": name,
			"timezone":    "UTC",
			"slots":       submissions[name],
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/availability", strings.NewReader(string(payload))))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results?code="+code, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Participants []string            `json:"participants"`
		Availability map[string][]string `json:"availability"`
		AllAvailable []string            `json:"allAvailable"`
		HasMutual    bool                `json:"hasMutual"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Alice", "Bob"}, resp.Participants)
	assert.Equal(t, []string{"Alice", "Bob"}, resp.Availability["2025-01-01T09:00:00Z"])
	assert.Equal(t, []string{"2025-01-01T09:00:00Z"}, resp.AllAvailable)
	assert.True(t, resp.HasMutual)
}

func TestGetResults_StoreError(t *testing.T) {
	store := newMockStore()
	store.getAllErr = errors.New("connection refused")
	srv := newTestServer(store)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results?code=evt-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAllAvailability(t *testing.T) {
	store := newMockStore()
	srv := newTestServer(store)
	code := createTestEvent(t, srv)

	body := `{
		"eventCode": "` + code + `",
		"displayName": "Alice",
		"timezone": "UTC",
		"slots": ["2025-01-01T09:00:00Z"]
	}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/availability", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/availability/all?code="+code, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Participants []string            `json:"participants"`
		Availability map[string][]string `json:"availability"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Alice"}, resp.Participants)
	assert.Equal(t, []string{"Alice"}, resp.Availability["2025-01-01T09:00:00Z"])
}
