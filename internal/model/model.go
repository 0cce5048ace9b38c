// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

// Status values are stored verbatim; REALIZADO is terminal.
const (
	StatusScheduled AppointmentStatus = "AGENDADO"
	StatusCompleted AppointmentStatus = "REALIZADO"
	StatusCanceled  AppointmentStatus = "CANCELADO"
)

// Valid reports whether s is one of the known status values.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Role gates administrative operations. Practitioners only see their own data.
type Role string

const (
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
)

// User is a practitioner account. PwdHash is a bcrypt digest.
type User struct {
	ID            uuid.UUID
	Email         string // unique
	PwdHash       []byte
	Name          string
	Role          Role
	DeactivatedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Patient belongs to exactly one practitioner (OwnerID); all lookups are
// scoped by that owner. A deactivated patient keeps its historical
// appointments.
type Patient struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	Phone         *string
	Notes         *string
	DeactivatedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Appointment is a booked time slot [StartAt, EndAt) for one patient.
// Two non-canceled appointments of the same owner never overlap; slots that
// merely touch at a boundary do not conflict.
type Appointment struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	PatientID uuid.UUID
	StartAt   time.Time
	EndAt     time.Time
	Status    AppointmentStatus
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentPatch carries a partial update. Nil time fields mean "keep".
// Notes is applied only when SetNotes is true; a nil Notes with SetNotes set
// clears the column.
type AppointmentPatch struct {
	StartAt  *time.Time
	EndAt    *time.Time
	Notes    *string
	SetNotes bool
}

// AppointmentWithPatient is an appointment enriched with the patient's
// display name for client rendering.
type AppointmentWithPatient struct {
	Appointment
	PatientName string
}

// PasswordResetToken is a single-use 6-digit code. UsedAt == nil means unused.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string // 6-digit numeric code, unique among live tokens
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
