package event

import (
	"time"

	"github.com/eventstaff/attendance/internal/core/common/validation"
)

type CreateEventDTO struct {
	Name      string    `json:"name" validate:"required,max=200"`
	Location  *string   `json:"location" validate:"omitempty,max=300"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

func (d CreateEventDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return validateRange(d.StartDate, d.EndDate)
}

// UpdateEventDTO is a partial update; nil fields are left unchanged.
type UpdateEventDTO struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Location  *string    `json:"location" validate:"omitempty,max=300"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (d UpdateEventDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}

func validateRange(start, end time.Time) error {
	v := validation.NewValidator()
	v.Field("endDate", end).NotBefore(start, "startDate")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
