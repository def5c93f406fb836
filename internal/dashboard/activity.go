package dashboard

import (
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
)

const DefaultActivityLimit = 10

type ActivityEmployee struct {
	ID     int64             `json:"id"`
	Name   string            `json:"name"`
	Role   string            `json:"role"`
	Status attendance.Status `json:"status"`
}

type Activity struct {
	ID         int64                 `json:"id"`
	Employee   ActivityEmployee      `json:"employee"`
	RecordType attendance.RecordType `json:"recordType"`
	Timestamp  time.Time             `json:"timestamp"`
	Notes      *string               `json:"notes"`
}

// EmployeeLookup resolves the employee behind a record together with the
// employee's status as of now. ok is false when the employee no longer exists.
type EmployeeLookup func(record attendance.TimeRecord) (ActivityEmployee, bool)

// RecentActivity takes the first limit records, which must already be latest
// first, and attaches their employees. Records without an employee are
// dropped after the limit is applied, so fewer than limit items may return.
func RecentActivity(records []attendance.TimeRecord, lookup EmployeeLookup, limit int) []Activity {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}

	out := make([]Activity, 0, len(records))
	for _, r := range records {
		emp, ok := lookup(r)
		if !ok {
			continue
		}
		out = append(out, Activity{
			ID:         r.ID,
			Employee:   emp,
			RecordType: r.RecordType,
			Timestamp:  r.Timestamp,
			Notes:      r.Notes,
		})
	}
	return out
}
