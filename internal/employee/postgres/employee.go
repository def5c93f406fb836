package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/employee"
	"github.com/eventstaff/attendance/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) List(ctx context.Context, eventID *int64) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	q := r.db.WithContext(ctx).Order("name ASC, id ASC")
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	err := q.Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *EmployeeRepository) first(ctx context.Context, query string, args ...interface{}) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where(query, args...).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"name":               e.Name,
			"email":              e.Email,
			"phone":              e.Phone,
			"document":           e.Document,
			"role":               e.Role,
			"event_id":           e.EventID,
			"default_start_time": e.DefaultStartTime,
			"default_end_time":   e.DefaultEndTime,
			"photo_url":          e.PhotoURL,
		}).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&employeeDatamodel.Employee{}, id).Error
}
