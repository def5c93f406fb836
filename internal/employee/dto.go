package employee

import (
	"github.com/eventstaff/attendance/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            string  `json:"phone" validate:"required,max=50"`
	Document         string  `json:"document" validate:"required,max=50"`
	Role             string  `json:"role" validate:"required,max=100"`
	EventID          int64   `json:"eventId" validate:"required,gt=0"`
	DefaultStartTime *string `json:"defaultStartTime" validate:"omitempty,hhmm"`
	DefaultEndTime   *string `json:"defaultEndTime" validate:"omitempty,hhmm"`
	PhotoURL         *string `json:"photoUrl" validate:"omitempty,url"`
}

func (d CreateEmployeeDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateEmployeeDTO is a partial update; nil fields are left unchanged.
type UpdateEmployeeDTO struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,min=1,max=50"`
	Document         *string `json:"document" validate:"omitempty,min=1,max=50"`
	Role             *string `json:"role" validate:"omitempty,min=1,max=100"`
	EventID          *int64  `json:"eventId" validate:"omitempty,gt=0"`
	DefaultStartTime *string `json:"defaultStartTime" validate:"omitempty,hhmm"`
	DefaultEndTime   *string `json:"defaultEndTime" validate:"omitempty,hhmm"`
	PhotoURL         *string `json:"photoUrl" validate:"omitempty,url"`
}

func (d UpdateEmployeeDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}
