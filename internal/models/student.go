package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StudentActive   = "active"
	StudentInactive = "inactive"

	studentCodePrefix = "SW"
)

type Student struct {
	ID             uuid.UUID  `db:"id"`
	ParentID       *uuid.UUID `db:"parent_id"`
	Code           string     `db:"student_code"`
	Name           string     `db:"name"`
	EducationLevel *string    `db:"education_level"`
	Status         string     `db:"status"`
	DateOfBirth    *time.Time `db:"date_of_birth"`
	SchoolName     *string    `db:"school_name"`
	Address        *string    `db:"address"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type StudentFilter struct {
	ParentID *uuid.UUID
	Trashed  TrashedMode
}

// StudentCode formats the n-th student code: SW001, SW002, ... SW1000.
func StudentCode(n int) string {
	return fmt.Sprintf("%s%03d", studentCodePrefix, n)
}

// ParseStudentCode returns the sequence number of a generated code. Codes
// entered by hand that don't follow the pattern report false.
func ParseStudentCode(code string) (int, bool) {
	rest, ok := strings.CutPrefix(code, studentCodePrefix)
	if !ok || len(rest) < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

type User struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        *string   `db:"phone"`
	Role         Role      `db:"role"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type UserFilter struct {
	Role *Role
}
