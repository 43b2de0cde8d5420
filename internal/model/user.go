package model

import (
	"fmt"
	"time"
)

// Admin is a staff account that reviews claims and manages students.
type Admin struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Student is a roster entry; students log in with roll number and DOB.
type Student struct {
	ID          int64       `json:"id"`
	RollNumber  string      `json:"roll_number"`
	FullName    string      `json:"full_name"`
	Department  string      `json:"department"`
	Year        string      `json:"year"`
	DOB         string      `json:"dob"`
	Email       string      `json:"email,omitempty"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	AdminNotes  []AdminNote `json:"admin_notes"`
	CreatedAt   time.Time   `json:"created_at"`
	DeletedAt   *time.Time  `json:"deleted_at,omitempty"`
}

// AdminNote is a remark an admin left on a student record.
type AdminNote struct {
	Note      string    `json:"note"`
	Admin     string    `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentContext is a department/year group used to browse the roster.
type StudentContext struct {
	Department string `json:"department"`
	Year       string `json:"year"`
	Count      int    `json:"count"`
}

// Roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleStudent    = "student"
)

var roleLevels = map[string]int{
	RoleSuperAdmin: 3,
	RoleAdmin:      2,
	RoleStudent:    1,
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles, on either side, never match.
func RoleAtLeast(role, minimum string) bool {
	have, ok := roleLevels[role]
	want, known := roleLevels[minimum]
	return ok && known && have >= want
}

// IsStaff reports whether role belongs to an admin account.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// MinPasswordLength is the minimum admin password length.
const MinPasswordLength = 8

// ValidatePassword checks that a password meets minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
