package domain

import "time"

type UserRole string

const (
	RoleClient    UserRole = "client"
	RolePerformer UserRole = "performer"
	RoleBoth      UserRole = "both"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email         string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null" validate:"required,email"`
	PasswordHash  string    `json:"-" gorm:"type:varchar(255)"`
	FullName      string    `json:"full_name" gorm:"type:varchar(255);not null"`
	Phone         string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Role          UserRole  `json:"user_type" gorm:"type:varchar(20);not null;default:'client'"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PerformerProfile is the bookable side of a performer account. Rates are in
// pence; any of them may be unset.
type PerformerProfile struct {
	ID                       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                   string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	StageName                string    `json:"stage_name,omitempty" gorm:"type:varchar(255)"`
	LocationName             string    `json:"location_name" gorm:"type:varchar(255)"`
	HourlyRate               *int64    `json:"hourly_rate_pence,omitempty"`
	EventRate                *int64    `json:"event_rate_pence,omitempty"`
	MinRate                  *int64    `json:"min_rate_pence,omitempty"`
	StripeAccountID          string    `json:"stripe_account_id,omitempty" gorm:"type:varchar(255);index"`
	StripeOnboardingComplete bool      `json:"stripe_onboarding_complete"`
	IsActive                 bool      `json:"is_active" gorm:"not null"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (PerformerProfile) TableName() string { return "performer_profiles" }

// PayoutReady reports whether funds can be routed to the performer.
func (p *PerformerProfile) PayoutReady() bool {
	return p.StripeAccountID != "" && p.StripeOnboardingComplete
}

// DisplayName is the stage name, or the fallback when none is set.
func (p *PerformerProfile) DisplayName(fallback string) string {
	if p.StageName != "" {
		return p.StageName
	}
	return fallback
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
