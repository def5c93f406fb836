package user

import (
	"github.com/eventstaff/attendance/internal/core/common/validation"
)

type RegisterDTO struct {
	Username   string  `json:"username" validate:"required,min=3,max=50"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	FirstName  *string `json:"firstName" validate:"omitempty,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Role       string  `json:"role" validate:"omitempty,oneof=user employee manager admin"`
	EmployeeID *int64  `json:"employeeId" validate:"omitempty,gt=0"`
}

func (d RegisterDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateUserDTO is a partial update. Role, Active and EmployeeID are
// privileged fields.
type UpdateUserDTO struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName  *string `json:"firstName" validate:"omitempty,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Role       *string `json:"role" validate:"omitempty,oneof=user employee manager admin"`
	EmployeeID *int64  `json:"employeeId" validate:"omitempty,gt=0"`
	IsActive   *bool   `json:"active"`
}

func (d UpdateUserDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}

func (d UpdateUserDTO) privileged() bool {
	return d.Role != nil || d.IsActive != nil || d.EmployeeID != nil
}
