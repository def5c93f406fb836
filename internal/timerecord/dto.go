package timerecord

import (
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/core/common/validation"
	"github.com/eventstaff/attendance/internal/employee"
)

const (
	SourceManual = "manual"
	SourceScan   = "scan"
)

// CreateTimeRecordDTO is the body of POST /api/time-records.
type CreateTimeRecordDTO struct {
	EmployeeID int64      `json:"employeeId" validate:"required,gt=0"`
	EventID    int64      `json:"eventId" validate:"required,gt=0"`
	RecordType string     `json:"recordType" validate:"required,recordtype"`
	Notes      *string    `json:"notes" validate:"omitempty,max=500"`
	Timestamp  *time.Time `json:"timestamp"`
}

func (d CreateTimeRecordDTO) Validate(now time.Time) error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	v := validation.NewValidator()
	v.Field("timestamp", d.Timestamp).NotFuture(now)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ScanDTO is the body of POST /api/scan. Either employeeId or the raw badge
// code must be present.
type ScanDTO struct {
	EmployeeID *int64  `json:"employeeId" validate:"omitempty,gt=0"`
	Code       string  `json:"code" validate:"omitempty,max=200"`
	EventID    int64   `json:"eventId" validate:"required,gt=0"`
	RecordType string  `json:"recordType" validate:"required,recordtype"`
	Notes      *string `json:"notes" validate:"omitempty,max=500"`
}

func (d ScanDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	if d.EmployeeID == nil && d.Code == "" {
		v := validation.NewValidator()
		v.Field("employeeId", d.EmployeeID).Required()
		if appErr := v.Validate(); appErr != nil {
			return appErr
		}
	}
	return nil
}

// ResolveEmployeeID prefers an explicit employeeId over the badge code.
func (d ScanDTO) ResolveEmployeeID() (int64, bool) {
	if d.EmployeeID != nil {
		return *d.EmployeeID, true
	}
	return employee.ParseBadgeCode(d.Code)
}

type ListFilter struct {
	EmployeeID *int64
	EventID    *int64
	// From and To bound the timestamp as [From, To) when set.
	From *time.Time
	To   *time.Time
}

type Result struct {
	Record attendance.TimeRecord `json:"record"`
	Status attendance.Status     `json:"status"`
}

type ScanResult struct {
	Record   attendance.TimeRecord `json:"record"`
	Employee employee.WithStatus   `json:"employee"`
}
