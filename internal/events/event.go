package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "scholarship-service"
	EventVersion = "1.0"
)

// Topics. The event type doubles as the topic name.
const (
	TopicProfileUpdated   = "scholarship.student.profile_updated"
	TopicCatalogUpdated   = "scholarship.catalog.updated"
	TopicMatchesRefreshed = "scholarship.matches.refreshed"
)

// Catalog actions
const (
	CatalogActionCreated     = "created"
	CatalogActionUpdated     = "updated"
	CatalogActionDeactivated = "deactivated"
)

// Event is the envelope of every message on the bus
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type ProfileUpdatedData struct {
	StudentProfileID uint `json:"student_profile_id"`
}

type CatalogUpdatedData struct {
	ScholarshipID uint   `json:"scholarship_id"`
	Action        string `json:"action"`
}

type MatchesRefreshedData struct {
	StudentProfileID uint `json:"student_profile_id"`
	EligibleCount    int  `json:"eligible_count"`
	Total            int  `json:"total"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// DecodeEvent parses an envelope and decodes its data into dest
func DecodeEvent(payload []byte, dest interface{}) (*Event, error) {
	var raw struct {
		Event
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil, fmt.Errorf("event %s has no data", raw.ID)
	}
	if err := json.Unmarshal(raw.Data, dest); err != nil {
		return nil, fmt.Errorf("failed to decode %s data: %w", raw.Type, err)
	}

	event := raw.Event
	event.Data = dest
	return &event, nil
}
