package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
)

type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

type RegistrationStatus string

const (
	Unregistered RegistrationStatus = "unregistered"
	Registered   RegistrationStatus = "registered"
)

// User carries a cached projection of the latest membership period.
// Only the assignment engine and the lapse sweep write the membership fields.
type User struct {
	ID                 int                `db:"id" json:"id"`
	Name               string             `db:"name" json:"name"`
	Email              string             `db:"email" json:"email"`
	PasswordHash       string             `db:"password_hash" json:"-"`
	Role               Role               `db:"role" json:"role"`
	RegistrationStatus RegistrationStatus `db:"registration_status" json:"registration_status"`
	MembershipStatus   MembershipStatus   `db:"membership_status" json:"membership_status"`
	MembershipEndDate  *time.Time         `db:"membership_end_date" json:"membership_end_date"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}
