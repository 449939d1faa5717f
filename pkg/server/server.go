// Package server exposes the scheduling services over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/core/expand"
	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/core/services"
	"github.com/whenworks/whenworks/pkg/db"
)

// Server routes API requests onto the service layer.
type Server struct {
	store  db.Store
	logger *zap.Logger
	mux    *http.ServeMux
}

// New creates a server over the given store.
func New(store db.Store, logger *zap.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /api/event", s.handleGetEvent)
	s.mux.HandleFunc("POST /api/event", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/availability/self", s.handleGetSelfAvailability)
	s.mux.HandleFunc("POST /api/availability", s.handleSubmitAvailability)
	s.mux.HandleFunc("GET /api/availability/all", s.handleGetAllAvailability)
	s.mux.HandleFunc("GET /api/results", s.handleGetResults)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type eventPayload struct {
	Code            string `json:"code,omitempty"`
	Title           string `json:"title"`
	EventType       string `json:"eventType"`
	StartDate       string `json:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
	StartWeekday    int    `json:"startWeekday,omitempty"`
	EndWeekday      int    `json:"endWeekday,omitempty"`
	StartTime       int    `json:"startTime"`
	EndTime         int    `json:"endTime"`
	Timezone        string `json:"timezone"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

type dayGroupPayload struct {
	DayKey   string   `json:"dayKey"`
	DayLabel string   `json:"dayLabel"`
	Slots    []string `json:"slots"`
}

type availabilityPayload struct {
	EventCode   string   `json:"eventCode"`
	DisplayName string   `json:"displayName"`
	Timezone    string   `json:"timezone"`
	Slots       []string `json:"slots"`
}

type errorResponse struct {
	Error       string             `json:"error,omitempty"`
	FieldErrors []model.FieldError `json:"fieldErrors,omitempty"`
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing code parameter"))
		return
	}

	result, err := services.GetEvent(r.Context(), s.store, s.logger, code)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Event     eventPayload      `json:"event"`
		DayGroups []dayGroupPayload `json:"dayGroups"`
	}{
		Event:     recordToPayload(result.Record),
		DayGroups: groupsToPayload(result.DayGroups),
	})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	eventRange, err := services.RecordToRange(payloadToRecord(payload))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := services.CreateEvent(r.Context(), s.store, s.logger, services.CreateEventInput{
		Title:      payload.Title,
		CustomCode: payload.Code,
		Range:      eventRange,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(result.FieldErrors) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{FieldErrors: result.FieldErrors})
		return
	}

	s.writeJSON(w, http.StatusCreated, struct {
		Event     eventPayload      `json:"event"`
		DayGroups []dayGroupPayload `json:"dayGroups"`
	}{
		Event:     recordToPayload(result.Record),
		DayGroups: groupsToPayload(result.DayGroups),
	})
}

func (s *Server) handleGetSelfAvailability(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	name := r.URL.Query().Get("name")
	if code == "" || name == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing code or name parameter"))
		return
	}

	record, err := services.LoadParticipant(r.Context(), s.store, s.logger, code, name, "UTC")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, availabilityPayload{
		EventCode:   record.EventCode,
		DisplayName: record.DisplayName,
		Timezone:    record.Timezone,
		Slots:       record.AvailableSlots,
	})
}

func (s *Server) handleSubmitAvailability(w http.ResponseWriter, r *http.Request) {
	var payload availabilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.EventCode == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing eventCode"))
		return
	}

	result, err := services.SubmitAvailability(r.Context(), s.store, s.logger, services.SubmitAvailabilityInput{
		EventCode:   payload.EventCode,
		DisplayName: payload.DisplayName,
		Timezone:    payload.Timezone,
		Slots:       payload.Slots,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(result.FieldErrors) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{FieldErrors: result.FieldErrors})
		return
	}

	s.writeJSON(w, http.StatusOK, availabilityPayload{
		EventCode:   result.Record.EventCode,
		DisplayName: result.Record.DisplayName,
		Timezone:    result.Record.Timezone,
		Slots:       result.Record.AvailableSlots,
	})
}

func (s *Server) handleGetAllAvailability(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing code parameter"))
		return
	}

	all, err := s.store.GetAllAvailability(r.Context(), code)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Participants []string            `json:"participants"`
		Availability map[string][]string `json:"availability"`
	}{
		Participants: all.Participants,
		Availability: all.Availability,
	})
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing code parameter"))
		return
	}

	result, err := services.ViewResults(r.Context(), s.store, s.logger, code)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Participants  []string            `json:"participants"`
		Availability  map[string][]string `json:"availability"`
		AllAvailable  []string            `json:"allAvailable"`
		NoneAvailable []string            `json:"noneAvailable"`
		HasMutual     bool                `json:"hasMutual"`
	}{
		Participants:  result.Participants,
		Availability:  result.Availability,
		AllAvailable:  result.Consensus.AllAvailable,
		NoneAvailable: result.Consensus.NoneAvailable,
		HasMutual:     result.HasMutual,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("Request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func recordToPayload(record *db.EventRecord) eventPayload {
	return eventPayload{
		Code:            record.Code,
		Title:           record.Title,
		EventType:       string(record.EventType),
		StartDate:       record.StartDate,
		EndDate:         record.EndDate,
		StartWeekday:    record.StartWeekday,
		EndWeekday:      record.EndWeekday,
		StartTime:       record.StartTime,
		EndTime:         record.EndTime,
		Timezone:        record.Timezone,
		DurationMinutes: record.DurationMinutes,
	}
}

func payloadToRecord(payload eventPayload) *db.EventRecord {
	return &db.EventRecord{
		Code:            payload.Code,
		Title:           payload.Title,
		EventType:       db.EventType(payload.EventType),
		StartDate:       payload.StartDate,
		EndDate:         payload.EndDate,
		StartWeekday:    payload.StartWeekday,
		EndWeekday:      payload.EndWeekday,
		StartTime:       payload.StartTime,
		EndTime:         payload.EndTime,
		Timezone:        payload.Timezone,
		DurationMinutes: payload.DurationMinutes,
	}
}

func groupsToPayload(groups []expand.DayGroup) []dayGroupPayload {
	out := make([]dayGroupPayload, 0, len(groups))
	for _, g := range groups {
		slots := make([]string, 0, len(g.Slots))
		for _, t := range g.Slots {
			slots = append(slots, model.SlotID(t))
		}
		out = append(out, dayGroupPayload{
			DayKey:   g.DayKey,
			DayLabel: g.DayLabel,
			Slots:    slots,
		})
	}
	return out
}
