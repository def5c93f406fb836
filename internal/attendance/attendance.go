// Package attendance derives an employee's attendance status from the
// append-only history of time records. Every function here is pure.
package attendance

import (
	"time"

	timerecordDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/timerecord"
)

type RecordType string

const (
	CheckIn    RecordType = "check_in"
	CheckOut   RecordType = "check_out"
	BreakStart RecordType = "break_start"
	BreakEnd   RecordType = "break_end"
)

var RecordTypes = []RecordType{CheckIn, CheckOut, BreakStart, BreakEnd}

// ParseRecordType accepts only the four canonical record type strings.
func ParseRecordType(s string) (RecordType, bool) {
	switch rt := RecordType(s); rt {
	case CheckIn, CheckOut, BreakStart, BreakEnd:
		return rt, true
	default:
		return "", false
	}
}

func (rt RecordType) IsValid() bool {
	_, ok := ParseRecordType(string(rt))
	return ok
}

type Status string

const (
	StatusWorking    Status = "working"
	StatusOnBreak    Status = "on_break"
	StatusCheckedOut Status = "checked_out"
	StatusAbsent     Status = "absent"
)

var Statuses = []Status{StatusWorking, StatusOnBreak, StatusCheckedOut, StatusAbsent}

type TimeRecord struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employeeId"`
	EventID    int64      `json:"eventId"`
	RecordType RecordType `json:"recordType"`
	Timestamp  time.Time  `json:"timestamp"`
	Notes      *string    `json:"notes"`
}

func ToDataModel(r *TimeRecord) *timerecordDatamodel.TimeRecord {
	return &timerecordDatamodel.TimeRecord{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		EventID:    r.EventID,
		RecordType: string(r.RecordType),
		Timestamp:  r.Timestamp,
		Notes:      r.Notes,
	}
}

func FromDataModel(r *timerecordDatamodel.TimeRecord) *TimeRecord {
	return &TimeRecord{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		EventID:    r.EventID,
		RecordType: RecordType(r.RecordType),
		Timestamp:  r.Timestamp,
		Notes:      r.Notes,
	}
}

func FromDataModels(rows []*timerecordDatamodel.TimeRecord) []TimeRecord {
	records := make([]TimeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *FromDataModel(row))
	}
	return records
}
