package auth

import "ignitegigs/internal/domain"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,max=32"`
	Role     string `json:"user_type" binding:"required,oneof=client performer"`

	StageName    string `json:"stage_name,omitempty" binding:"omitempty,max=255"`
	LocationName string `json:"location_name,omitempty" binding:"omitempty,max=255"`
	HourlyRate   *int64 `json:"hourly_rate_pence,omitempty" binding:"omitempty,gt=0"`
	EventRate    *int64 `json:"event_rate_pence,omitempty" binding:"omitempty,gt=0"`
	MinRate      *int64 `json:"min_rate_pence,omitempty" binding:"omitempty,gt=0"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserPublic struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"user_type"`
	PerformerID string `json:"performer_id,omitempty"`
}

type AuthResponse struct {
	User  UserPublic `json:"user"`
	Token string     `json:"token"`
}

func toPublic(u *domain.User, performerID string) UserPublic {
	return UserPublic{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		PerformerID: performerID,
	}
}
