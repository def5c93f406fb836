package employee

import (
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	employeeDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/employee"
)

type Employee struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Document         string    `json:"document"`
	Role             string    `json:"role"`
	EventID          int64     `json:"eventId"`
	DefaultStartTime *string   `json:"defaultStartTime"`
	DefaultEndTime   *string   `json:"defaultEndTime"`
	PhotoURL         *string   `json:"photoUrl"`
	CreatedAt        time.Time `json:"createdAt"`
}

// WithStatus is an employee plus the attendance summary derived from its records.
type WithStatus struct {
	Employee
	Status       attendance.Status      `json:"status"`
	CheckInTime  *string                `json:"checkInTime,omitempty"`
	LastActivity *attendance.TimeRecord `json:"lastActivity,omitempty"`
}

type Detail struct {
	WithStatus
	TimeRecords []attendance.TimeRecord `json:"timeRecords"`
}

func NewWithStatus(e Employee, summary attendance.Summary) WithStatus {
	return WithStatus{
		Employee:     e,
		Status:       summary.Status,
		CheckInTime:  summary.CheckInTime,
		LastActivity: summary.LastActivity,
	}
}

func (e *Employee) apply(dto UpdateEmployeeDTO) {
	if dto.Name != nil {
		e.Name = *dto.Name
	}
	if dto.Email != nil {
		e.Email = *dto.Email
	}
	if dto.Phone != nil {
		e.Phone = *dto.Phone
	}
	if dto.Document != nil {
		e.Document = *dto.Document
	}
	if dto.Role != nil {
		e.Role = *dto.Role
	}
	if dto.EventID != nil {
		e.EventID = *dto.EventID
	}
	if dto.DefaultStartTime != nil {
		e.DefaultStartTime = dto.DefaultStartTime
	}
	if dto.DefaultEndTime != nil {
		e.DefaultEndTime = dto.DefaultEndTime
	}
	if dto.PhotoURL != nil {
		e.PhotoURL = dto.PhotoURL
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		Phone:            e.Phone,
		Document:         e.Document,
		Role:             e.Role,
		EventID:          e.EventID,
		DefaultStartTime: e.DefaultStartTime,
		DefaultEndTime:   e.DefaultEndTime,
		PhotoURL:         e.PhotoURL,
		CreatedAt:        e.CreatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		Phone:            e.Phone,
		Document:         e.Document,
		Role:             e.Role,
		EventID:          e.EventID,
		DefaultStartTime: e.DefaultStartTime,
		DefaultEndTime:   e.DefaultEndTime,
		PhotoURL:         e.PhotoURL,
		CreatedAt:        e.CreatedAt,
	}
}
