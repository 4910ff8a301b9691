package types

import (
	"time"

	"github.com/shiftline-dev/shiftline/internal/models"
)

type UserResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Image           string      `json:"image,omitempty"`
	Role            models.Role `json:"role"`
	EmailVerifiedAt *time.Time  `json:"email_verified_at"`
	HourlyWage      *float64    `json:"hourly_wage,omitempty"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Image:           user.Image,
		Role:            user.Role,
		EmailVerifiedAt: user.EmailVerifiedAt,
		HourlyWage:      user.HourlyWage,
	}
}
