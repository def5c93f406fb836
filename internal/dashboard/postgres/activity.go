package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

const recentActivityQuery = `
SELECT tr.id, tr.employee_id, tr.event_id, tr.record_type, tr.timestamp, tr.notes,
       e.name AS employee_name, e.role AS employee_role
FROM time_records tr
LEFT JOIN employees e ON e.id = tr.employee_id
%s
ORDER BY tr.timestamp DESC, tr.id DESC
LIMIT ?`

type activityRow struct {
	ID           int64     `db:"id"`
	EmployeeID   int64     `db:"employee_id"`
	EventID      int64     `db:"event_id"`
	RecordType   string    `db:"record_type"`
	Timestamp    time.Time `db:"timestamp"`
	Notes        *string   `db:"notes"`
	EmployeeName *string   `db:"employee_name"`
	EmployeeRole *string   `db:"employee_role"`
}

// ActivityRepository reads the activity feed in one round trip.
type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var _ dashboard.ActivityReader = (*ActivityRepository)(nil)

func (r *ActivityRepository) Recent(ctx context.Context, eventID *int64, limit int) ([]dashboard.ActivityRow, error) {
	var (
		where string
		args  []interface{}
	)
	if eventID != nil {
		where = "WHERE tr.event_id = ?"
		args = append(args, *eventID)
	}
	args = append(args, limit)

	var rows []activityRow
	query := r.db.Rebind(fmt.Sprintf(recentActivityQuery, where))
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]dashboard.ActivityRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, dashboard.ActivityRow{
			Record: attendance.TimeRecord{
				ID:         row.ID,
				EmployeeID: row.EmployeeID,
				EventID:    row.EventID,
				RecordType: attendance.RecordType(row.RecordType),
				Timestamp:  row.Timestamp.UTC(),
				Notes:      row.Notes,
			},
			EmployeeName: row.EmployeeName,
			EmployeeRole: row.EmployeeRole,
		})
	}
	return out, nil
}
