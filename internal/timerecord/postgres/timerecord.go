package postgres

import (
	"context"

	"github.com/eventstaff/attendance/internal/attendance"
	timerecordDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/timerecord"
	"github.com/eventstaff/attendance/internal/timerecord"
	"gorm.io/gorm"
)

const latestFirst = "timestamp DESC, id DESC"

// TimeRecordRepository only ever inserts; rows are never updated or deleted.
type TimeRecordRepository struct {
	db *gorm.DB
}

func NewTimeRecordRepository(db *gorm.DB) *TimeRecordRepository {
	return &TimeRecordRepository{db: db}
}

var _ timerecord.RepositoryAPI = (*TimeRecordRepository)(nil)

func (r *TimeRecordRepository) Create(ctx context.Context, record *attendance.TimeRecord) error {
	row := attendance.ToDataModel(record)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	record.ID = row.ID
	return nil
}

func (r *TimeRecordRepository) ListFor(ctx context.Context, employeeID, eventID int64) ([]attendance.TimeRecord, error) {
	var rows []*timerecordDatamodel.TimeRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND event_id = ?", employeeID, eventID).
		Order(latestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return attendance.FromDataModels(rows), nil
}

func (r *TimeRecordRepository) List(ctx context.Context, filter timerecord.ListFilter) ([]attendance.TimeRecord, error) {
	q := r.db.WithContext(ctx).Order(latestFirst)
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.EventID != nil {
		q = q.Where("event_id = ?", *filter.EventID)
	}
	if filter.From != nil {
		q = q.Where("timestamp >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("timestamp < ?", filter.To.UTC())
	}

	var rows []*timerecordDatamodel.TimeRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return attendance.FromDataModels(rows), nil
}

// ListByEmployees serves status derivation for a batch of employees.
func (r *TimeRecordRepository) ListByEmployees(ctx context.Context, employeeIDs []int64) ([]attendance.TimeRecord, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var rows []*timerecordDatamodel.TimeRecord
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Order(latestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return attendance.FromDataModels(rows), nil
}
