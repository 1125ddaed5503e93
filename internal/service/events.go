package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"greenride/internal/domain"
)

// EventType represents the type of an audit event.
type EventType string

const (
	EventRideSubmitted EventType = "RIDE_SUBMITTED"
	EventRideVerified  EventType = "RIDE_VERIFIED"
	EventRideRejected  EventType = "RIDE_REJECTED"
	EventBadgeIssued   EventType = "BADGE_ISSUED"
	EventConfigChanged EventType = "CONFIG_CHANGED"
)

// Event represents an emitted audit event.
type Event struct {
	ID        string
	Type      EventType
	Rider     string
	Data      map[string]interface{}
	EmittedAt time.Time
}

// EventService emits audit events for ledger operations.
//
// In a real deployment this would publish to a message bus or an indexer;
// here events are assigned an id and written to the log.
type EventService struct{}

// NewEventService creates a new EventService.
func NewEventService() *EventService {
	return &EventService{}
}

// RideSubmitted emits a submission event.
func (s *EventService) RideSubmitted(ctx context.Context, ride *domain.Ride) {
	s.emit(ctx, Event{
		Type:  EventRideSubmitted,
		Rider: ride.Rider,
		Data: map[string]interface{}{
			"ride_id":       ride.ID,
			"distance":      ride.Distance,
			"duration":      ride.Duration,
			"carbon_offset": ride.CarbonOffset,
		},
	})
}

// RideVerified emits a verification event.
func (s *EventService) RideVerified(ctx context.Context, ride *domain.Ride) {
	s.emit(ctx, Event{
		Type:  EventRideVerified,
		Rider: ride.Rider,
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"reward":  ride.RewardAmount,
		},
	})
}

// RideRejected emits a rejection event carrying the audit reason.
func (s *EventService) RideRejected(ctx context.Context, ride *domain.Ride, reason string) {
	s.emit(ctx, Event{
		Type:  EventRideRejected,
		Rider: ride.Rider,
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"reason":  reason,
		},
	})
}

// BadgeIssued emits a badge issuance event.
func (s *EventService) BadgeIssued(ctx context.Context, record *domain.BadgeRecord) {
	s.emit(ctx, Event{
		Type:  EventBadgeIssued,
		Rider: record.Rider,
		Data: map[string]interface{}{
			"kind":     string(record.Kind),
			"asset_id": record.AssetID,
		},
	})
}

// ConfigChanged emits a configuration-change event with old and new values.
func (s *EventService) ConfigChanged(ctx context.Context, setting string, oldValue, newValue interface{}) {
	s.emit(ctx, Event{
		Type: EventConfigChanged,
		Data: map[string]interface{}{
			"setting": setting,
			"old":     oldValue,
			"new":     newValue,
		},
	})
}

// emit delivers an event (log implementation).
func (s *EventService) emit(ctx context.Context, event Event) {
	event.ID = uuid.New().String()
	event.EmittedAt = time.Now()

	log.Printf("[EVENT] id=%s type=%s rider=%s data=%v",
		event.ID, event.Type, event.Rider, event.Data)
}
