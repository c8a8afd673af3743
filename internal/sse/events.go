// Package sse implements Server-Sent Events for pushing humidor changes to
// connected browsers.
package sse

import (
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventTastingStarted is sent when a tasting moves to in-progress.
	EventTastingStarted EventType = "tasting.started"
	// EventTastingFinished is sent when a tasting is archived with its review.
	EventTastingFinished EventType = "tasting.finished"
	// EventTastingCancelled is sent when an in-progress tasting is discarded.
	EventTastingCancelled EventType = "tasting.cancelled"

	EventCigarCreated EventType = "cigar.created"
	EventCigarUpdated EventType = "cigar.updated"
	EventCigarDeleted EventType = "cigar.deleted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one owner's clients. Empty means everyone.
	UserID string `json:"-"`
}

// TastingEventData is the payload for tasting.started and tasting.cancelled.
type TastingEventData struct {
	Tasting *domain.ActiveTasting `json:"tasting"`
}

// TastingFinishedEventData is the payload for tasting.finished.
type TastingFinishedEventData struct {
	Tasting *domain.ArchivedTasting `json:"tasting"`
}

// CigarEventData is the payload for cigar.created and cigar.updated.
type CigarEventData struct {
	Cigar *domain.Cigar `json:"cigar"`
}

// CigarDeletedEventData is the payload for cigar.deleted.
type CigarDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	CigarID   string    `json:"cigar_id"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewTastingStartedEvent creates a tasting.started event for the session owner.
func NewTastingStartedEvent(t *domain.ActiveTasting) Event {
	return Event{
		Type:      EventTastingStarted,
		Data:      TastingEventData{Tasting: t},
		Timestamp: time.Now(),
		UserID:    t.UserID,
	}
}

// NewTastingCancelledEvent creates a tasting.cancelled event.
func NewTastingCancelledEvent(t *domain.ActiveTasting) Event {
	return Event{
		Type:      EventTastingCancelled,
		Data:      TastingEventData{Tasting: t},
		Timestamp: time.Now(),
		UserID:    t.UserID,
	}
}

// NewTastingFinishedEvent creates a tasting.finished event.
func NewTastingFinishedEvent(rec *domain.ArchivedTasting) Event {
	return Event{
		Type:      EventTastingFinished,
		Data:      TastingFinishedEventData{Tasting: rec},
		Timestamp: time.Now(),
		UserID:    rec.UserID,
	}
}

// NewCigarCreatedEvent creates a cigar.created event.
func NewCigarCreatedEvent(c *domain.Cigar) Event {
	return Event{
		Type:      EventCigarCreated,
		Data:      CigarEventData{Cigar: c},
		Timestamp: time.Now(),
		UserID:    c.UserID,
	}
}

// NewCigarUpdatedEvent creates a cigar.updated event.
func NewCigarUpdatedEvent(c *domain.Cigar) Event {
	return Event{
		Type:      EventCigarUpdated,
		Data:      CigarEventData{Cigar: c},
		Timestamp: time.Now(),
		UserID:    c.UserID,
	}
}

// NewCigarDeletedEvent creates a cigar.deleted event.
func NewCigarDeletedEvent(userID, cigarID string, deletedAt time.Time) Event {
	return Event{
		Type: EventCigarDeleted,
		Data: CigarDeletedEventData{
			CigarID:   cigarID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
