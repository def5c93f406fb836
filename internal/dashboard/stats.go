// Package dashboard folds per-employee attendance into event-wide numbers:
// status counts, recent activity and worked hours.
package dashboard

import (
	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/employee"
)

type Stats struct {
	TotalEmployees      int `json:"totalEmployees"`
	ActiveEmployees     int `json:"activeEmployees"`
	OnBreakEmployees    int `json:"onBreakEmployees"`
	CheckedOutEmployees int `json:"checkedOutEmployees"`
	AbsentEmployees     int `json:"absentEmployees"`
	AttendanceRate      int `json:"attendanceRate"`
	BreakRate           int `json:"breakRate"`
	AbsentRate          int `json:"absentRate"`
}

// ComputeStats counts employees per status bucket. Present means working or
// on break. Rates are whole percentages rounded half-up, and 0 when their
// denominator is 0.
func ComputeStats(employees []employee.WithStatus) Stats {
	var s Stats
	for _, e := range employees {
		switch e.Status {
		case attendance.StatusWorking:
			s.ActiveEmployees++
		case attendance.StatusOnBreak:
			s.OnBreakEmployees++
		case attendance.StatusCheckedOut:
			s.CheckedOutEmployees++
		default:
			s.AbsentEmployees++
		}
	}

	s.TotalEmployees = len(employees)
	present := s.ActiveEmployees + s.OnBreakEmployees

	s.AttendanceRate = percent(present, s.TotalEmployees)
	s.BreakRate = percent(s.OnBreakEmployees, present)
	s.AbsentRate = percent(s.AbsentEmployees, s.TotalEmployees)
	return s
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (part*200 + whole) / (2 * whole)
}
