package attendance

import (
	"fmt"
	"sort"
	"time"
)

// WorkedDuration pairs check-ins with the following check-out in
// chronological order. Break time inside a closed interval is not
// subtracted. An interval still open at the end counts until now unless
// the employee is on a break.
func WorkedDuration(records []TimeRecord, now time.Time) time.Duration {
	sorted := make([]TimeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newerThan(sorted[j], sorted[i])
	})

	var (
		total      time.Duration
		checkIn    *time.Time
		breakStart *time.Time
	)

	for i := range sorted {
		r := sorted[i]
		switch r.RecordType {
		case CheckIn:
			ts := r.Timestamp
			checkIn = &ts
		case CheckOut:
			if checkIn != nil {
				total += r.Timestamp.Sub(*checkIn)
				checkIn = nil
			}
		case BreakStart:
			ts := r.Timestamp
			breakStart = &ts
		case BreakEnd:
			breakStart = nil
		}
	}

	if checkIn != nil && breakStart == nil && now.After(*checkIn) {
		total += now.Sub(*checkIn)
	}
	return total
}

// FormatDuration renders a duration as "Xh Ym" rounded to the nearest minute.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d.Round(time.Minute) / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
