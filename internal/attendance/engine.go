package attendance

import (
	"sort"
	"time"
)

const CheckInTimeLayout = "15:04"

type Summary struct {
	Status       Status      `json:"status"`
	CheckInTime  *string     `json:"checkInTime"`
	LastActivity *TimeRecord `json:"lastActivity"`
}

// newerThan orders records latest first: timestamp desc, then id desc.
func newerThan(a, b TimeRecord) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}

// SortLatestFirst returns a sorted copy; the input slice is left untouched.
func SortLatestFirst(records []TimeRecord) []TimeRecord {
	sorted := make([]TimeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newerThan(sorted[i], sorted[j])
	})
	return sorted
}

func Latest(records []TimeRecord) (TimeRecord, bool) {
	if len(records) == 0 {
		return TimeRecord{}, false
	}
	latest := records[0]
	for _, r := range records[1:] {
		if newerThan(r, latest) {
			latest = r
		}
	}
	return latest, true
}

func StatusFor(rt RecordType) Status {
	switch rt {
	case CheckIn, BreakEnd:
		return StatusWorking
	case BreakStart:
		return StatusOnBreak
	case CheckOut:
		return StatusCheckedOut
	default:
		return StatusAbsent
	}
}

// DeriveStatus maps the chronologically latest record to a status.
// An empty history is absent.
func DeriveStatus(records []TimeRecord) Status {
	latest, ok := Latest(records)
	if !ok {
		return StatusAbsent
	}
	return StatusFor(latest.RecordType)
}

// DeriveCheckInTime returns the most recent check-in, not the first one of
// the day. Callers that need the shift start should use WorkedDuration's
// pairing instead.
func DeriveCheckInTime(records []TimeRecord) *time.Time {
	var found *TimeRecord
	for i := range records {
		r := records[i]
		if r.RecordType != CheckIn {
			continue
		}
		if found == nil || newerThan(r, *found) {
			found = &records[i]
		}
	}
	if found == nil {
		return nil
	}
	ts := found.Timestamp
	return &ts
}

func Summarize(records []TimeRecord, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}

	summary := Summary{Status: StatusAbsent}
	latest, ok := Latest(records)
	if !ok {
		return summary
	}

	summary.Status = StatusFor(latest.RecordType)
	summary.LastActivity = &latest

	if ts := DeriveCheckInTime(records); ts != nil {
		formatted := ts.In(loc).Format(CheckInTimeLayout)
		summary.CheckInTime = &formatted
	}
	return summary
}
