package dashboard

import (
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/employee"
)

type ShiftEntry struct {
	EmployeeID    int64      `json:"employeeId"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	Records       int        `json:"records"`
	WorkedMinutes int64      `json:"workedMinutes"`
	WorkedHours   string     `json:"workedHours"`
	CheckIn       *time.Time `json:"checkIn"`
	BreakStart    *time.Time `json:"breakStart"`
	BreakEnd      *time.Time `json:"breakEnd"`
	CheckOut      *time.Time `json:"checkOut"`
}

// ShiftReport lists worked time per employee. records are expected to be
// already narrowed to the window being reported; only records of each
// employee's own event count. The per-type timestamps are the latest of
// each type.
func ShiftReport(employees []*employee.Employee, records []attendance.TimeRecord, now time.Time) []ShiftEntry {
	grouped := employee.GroupRecords(employees, records)

	out := make([]ShiftEntry, 0, len(employees))
	for _, e := range employees {
		own := attendance.SortLatestFirst(grouped[e.ID])
		worked := attendance.WorkedDuration(own, now)

		entry := ShiftEntry{
			EmployeeID:    e.ID,
			Name:          e.Name,
			Role:          e.Role,
			Records:       len(own),
			WorkedMinutes: int64(worked.Round(time.Minute) / time.Minute),
			WorkedHours:   attendance.FormatDuration(worked),
		}
		for i := range own {
			ts := own[i].Timestamp
			switch own[i].RecordType {
			case attendance.CheckIn:
				entry.CheckIn = firstSet(entry.CheckIn, ts)
			case attendance.BreakStart:
				entry.BreakStart = firstSet(entry.BreakStart, ts)
			case attendance.BreakEnd:
				entry.BreakEnd = firstSet(entry.BreakEnd, ts)
			case attendance.CheckOut:
				entry.CheckOut = firstSet(entry.CheckOut, ts)
			}
		}
		out = append(out, entry)
	}
	return out
}

func firstSet(current *time.Time, ts time.Time) *time.Time {
	if current != nil {
		return current
	}
	return &ts
}
