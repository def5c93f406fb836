package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimeRecordCreated = "time_record.created"
	EventTypeEmployeeChanged   = "employee.changed"
)

type TimeRecordCreatedEvent struct {
	BaseEvent
	RecordID          int64     `json:"record_id"`
	EmployeeID        int64     `json:"employee_id"`
	AttendanceEventID int64     `json:"event_id"`
	RecordType        string    `json:"record_type"`
	Status            string    `json:"status"`
	Source            string    `json:"source"`
	RecordedAt        time.Time `json:"recorded_at"`
}

func NewTimeRecordCreatedEvent(recordID, employeeID, eventID int64, recordType, status, source string, recordedAt time.Time) *TimeRecordCreatedEvent {
	return &TimeRecordCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimeRecordCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"record_id":   recordID,
				"employee_id": employeeID,
				"event_id":    eventID,
				"record_type": recordType,
				"status":      status,
				"source":      source,
				"recorded_at": recordedAt,
			},
		},
		RecordID:          recordID,
		EmployeeID:        employeeID,
		AttendanceEventID: eventID,
		RecordType:        recordType,
		Status:            status,
		Source:            source,
		RecordedAt:        recordedAt,
	}
}

// EmployeeChangedEvent covers create, update and delete; Action says which.
type EmployeeChangedEvent struct {
	BaseEvent
	EmployeeID        int64  `json:"employee_id"`
	AttendanceEventID int64  `json:"event_id"`
	Action            string `json:"action"`
}

func NewEmployeeChangedEvent(employeeID, eventID int64, action string) *EmployeeChangedEvent {
	return &EmployeeChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"event_id":    eventID,
				"action":      action,
			},
		},
		EmployeeID:        employeeID,
		AttendanceEventID: eventID,
		Action:            action,
	}
}

// EventIDOf extracts the attendance event id carried by a bus event.
func EventIDOf(e Event) (int64, bool) {
	switch ev := e.(type) {
	case *TimeRecordCreatedEvent:
		return ev.AttendanceEventID, true
	case *EmployeeChangedEvent:
		return ev.AttendanceEventID, true
	}
	if data, ok := e.Payload().(map[string]interface{}); ok {
		switch id := data["event_id"].(type) {
		case int64:
			return id, true
		case float64:
			return int64(id), true
		case int:
			return int64(id), true
		}
	}
	return 0, false
}
