package auth

import "github.com/eventstaff/attendance/internal/core/common/validation"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (d LoginDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	if appErr := validation.Struct(&d); appErr != nil {
		return appErr
	}
	return nil
}
