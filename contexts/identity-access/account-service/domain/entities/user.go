package entities

import "time"

// User is an account record. Mobile number doubles as the login
// credential key and is unique across the system.
type User struct {
	UserID       string    `json:"user_id"`
	MobileNumber string    `json:"mobile_number"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is static reference data, seeded once.
type Role struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
}
