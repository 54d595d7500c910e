package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
	"github.com/example/visitor-access/internal/query"
)

// Handlers serves the visitor access API: registration, pass-card delivery,
// door entries and the read side.
type Handlers struct {
	visitorSvc   *visitor.Service
	queryHandler *query.Handler
}

func NewHandlers(visitorSvc *visitor.Service, queryHandler *query.Handler) *Handlers {
	return &Handlers{visitorSvc: visitorSvc, queryHandler: queryHandler}
}

// RegisterVisitorRequest is the registration request body. expire_at uses the
// canonical textual timestamp pattern.
type RegisterVisitorRequest struct {
	Name     string `json:"name"`
	ExpireAt string `json:"expire_at"`
}

type EnterDoorRequest struct {
	DoorID string `json:"door_id"`
}

// EventResponse is the wire form of a stored event. Timestamps use the
// canonical textual pattern.
type EventResponse struct {
	RecordID    int64  `json:"record_id"`
	AggregateID string `json:"aggregate_id"`
	EventType   string `json:"event_type"`
	OccurredAt  string `json:"occurred_at"`
	Name        string `json:"name,omitempty"`
	ExpireAt    string `json:"expire_at,omitempty"`
	DoorID      string `json:"door_id,omitempty"`
}

// VisitorResponse is the wire form of a visitor snapshot. Absent fields are
// omitted.
type VisitorResponse struct {
	AggregateID       string  `json:"aggregate_id"`
	Name              *string `json:"name,omitempty"`
	ExpireAt          *string `json:"expire_at,omitempty"`
	DeliveredAt       *string `json:"delivered_at,omitempty"`
	LastDoorID        *string `json:"last_door_id,omitempty"`
	LastDoorEnteredAt *string `json:"last_door_entered_at,omitempty"`
	OccurredAt        *string `json:"occurred_at,omitempty"`
	Version           int64   `json:"version"`
}

func newEventResponse(event visitor.DomainEvent) EventResponse {
	resp := EventResponse{
		RecordID:    event.RecordID(),
		AggregateID: event.AggregateID().String(),
		EventType:   event.Kind(),
		OccurredAt:  visitor.FormatTimestamp(event.OccurredAt()),
	}
	switch e := event.(type) {
	case *visitor.VisitorRegistered:
		resp.Name = e.Name()
		resp.ExpireAt = visitor.FormatTimestamp(e.ExpireAt())
	case *visitor.EnteredTheDoor:
		resp.DoorID = e.DoorID()
	}
	return resp
}

func newVisitorResponse(snap *visitor.VisitorStateSnapshot) VisitorResponse {
	resp := VisitorResponse{
		AggregateID: snap.AggregateID.String(),
		Name:        snap.Name,
		LastDoorID:  snap.LastDoorID,
		Version:     snap.Version,
	}
	if snap.ExpireAt != nil {
		v := visitor.FormatTimestamp(*snap.ExpireAt)
		resp.ExpireAt = &v
	}
	if snap.DeliveredAt != nil {
		v := visitor.FormatTimestamp(*snap.DeliveredAt)
		resp.DeliveredAt = &v
	}
	if snap.LastDoorEnteredAt != nil {
		v := visitor.FormatTimestamp(*snap.LastDoorEnteredAt)
		resp.LastDoorEnteredAt = &v
	}
	if snap.OccurredAt != nil {
		v := visitor.FormatTimestamp(*snap.OccurredAt)
		resp.OccurredAt = &v
	}
	return resp
}

// RegisterVisitor handles POST /visitors.
func (h *Handlers) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	var req RegisterVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expireAt, err := visitor.ParseTimestamp(req.ExpireAt)
	if err != nil {
		respondJSONError(w, "Invalid expire_at", http.StatusBadRequest)
		return
	}

	event, err := h.visitorSvc.Register(r.Context(), req.Name, expireAt)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newEventResponse(event))
}

// DeliverPassCard handles POST /visitors/{id}/pass-card.
func (h *Handlers) DeliverPassCard(w http.ResponseWriter, r *http.Request) {
	aggregateID, ok := extractAggregateID(w, r.URL.Path, "/pass-card")
	if !ok {
		return
	}

	event, err := h.visitorSvc.DeliverPassCard(r.Context(), aggregateID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newEventResponse(event))
}

// EnterDoor handles POST /visitors/{id}/entries.
func (h *Handlers) EnterDoor(w http.ResponseWriter, r *http.Request) {
	aggregateID, ok := extractAggregateID(w, r.URL.Path, "/entries")
	if !ok {
		return
	}

	var req EnterDoorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.visitorSvc.EnterDoor(r.Context(), aggregateID, req.DoorID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newEventResponse(event))
}

// GetVisitor handles GET /visitors/{id}.
func (h *Handlers) GetVisitor(w http.ResponseWriter, r *http.Request) {
	aggregateID, ok := extractAggregateID(w, r.URL.Path, "")
	if !ok {
		return
	}

	snap, err := h.queryHandler.GetVisitor(r.Context(), aggregateID)
	if err != nil {
		if errors.Is(err, query.ErrVisitorNotFound) {
			respondJSONError(w, "Visitor not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, newVisitorResponse(snap))
}

// ListEvents handles GET /events.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.queryHandler.ListEvents(r.Context())
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, newEventResponse(event))
	}
	respondJSON(w, http.StatusOK, responses)
}

func extractAggregateID(w http.ResponseWriter, path, suffix string) (uuid.UUID, bool) {
	id := strings.TrimPrefix(path, "/visitors/")
	id = strings.TrimSuffix(id, suffix)
	id = strings.Trim(id, "/")

	aggregateID, err := uuid.Parse(id)
	if err != nil {
		respondJSONError(w, "Invalid visitor id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return aggregateID, true
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, visitor.ErrInvalidName),
		errors.Is(err, visitor.ErrInvalidDoorID),
		errors.Is(err, visitor.ErrInvalidExpireAt),
		errors.Is(err, visitor.ErrNoAggregateID):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
