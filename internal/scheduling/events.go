package scheduling

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventAppointmentRequested   = "APPOINTMENT_REQUESTED"
	EventAppointmentAccepted    = "APPOINTMENT_ACCEPTED"
	EventAppointmentDeclined    = "APPOINTMENT_DECLINED"
	EventAppointmentCancelled   = "APPOINTMENT_CANCELLED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentCompleted   = "APPOINTMENT_COMPLETED"
	EventAppointmentPurged      = "APPOINTMENT_PURGED"
	EventLeaveFiled             = "LEAVE_FILED"
	EventLeaveUpdated           = "LEAVE_UPDATED"
	EventLeaveWithdrawn         = "LEAVE_WITHDRAWN"
	EventLeaveApproved          = "LEAVE_APPROVED"
	EventLeaveRejected          = "LEAVE_REJECTED"
	EventScheduleSet            = "SCHEDULE_SET"
	EventSchedulePurged         = "SCHEDULE_PURGED"
)

// Event is an audit record of one applied change.
type Event struct {
	Type      string
	EntityID  string
	Payload   []byte // JSON object
	CreatedAt time.Time
}

type EventSink interface {
	Record(ctx context.Context, ev Event) error
}

// LogSink writes events to the process logger instead of a table.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Record(_ context.Context, ev Event) error {
	s.Log.Info().
		Str("event", ev.Type).
		Str("entity_id", ev.EntityID).
		RawJSON("payload", ev.Payload).
		Time("at", ev.CreatedAt).
		Msg("event")
	return nil
}

func newEvent(typ, entityID string, payload map[string]any, at time.Time) Event {
	data, err := json.Marshal(payload)
	if err != nil || payload == nil {
		data = []byte("{}")
	}
	return Event{Type: typ, EntityID: entityID, Payload: data, CreatedAt: at}
}
