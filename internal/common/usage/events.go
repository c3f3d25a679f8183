package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nexsupply-workers/internal/models"
)

const DefaultMaxEvents = 50

// EventLog keeps the most recent events per identity, oldest dropped first.
type EventLog struct {
	store ListStore
	max   int64
	now   func() time.Time
}

func NewEventLog(store ListStore, maxEvents int) *EventLog {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &EventLog{store: store, max: int64(maxEvents), now: time.Now}
}

func (l *EventLog) Record(ctx context.Context, identity, eventType string, metadata map[string]interface{}) (*models.LeadEvent, error) {
	event := &models.LeadEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: l.now().UTC(),
		Metadata:  metadata,
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	if err := l.store.Push(ctx, eventsKey(identity), string(raw), l.max); err != nil {
		return nil, err
	}
	return event, nil
}

// Events returns the identity's log, oldest first. Unreadable entries are skipped.
func (l *EventLog) Events(ctx context.Context, identity string) ([]models.LeadEvent, error) {
	raws, err := l.store.Range(ctx, eventsKey(identity))
	if err != nil {
		return nil, err
	}
	events := make([]models.LeadEvent, 0, len(raws))
	for _, raw := range raws {
		var e models.LeadEvent
		if json.Unmarshal([]byte(raw), &e) != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func eventsKey(identity string) string {
	return "events:" + identity
}
