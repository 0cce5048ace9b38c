// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AppointmentRepository provides owner-scoped access to appointments.
//
// The conflict check and the subsequent write are separate calls; the backend
// must keep the check-then-write sequence race-free under concurrent callers
// (the Postgres implementation relies on an exclusion constraint over
// owner_id + time range for non-canceled rows).
type AppointmentRepository interface {
	// Create inserts a new appointment. Returns errs.ErrAppointmentConflict
	// when the slot collides with an active appointment of the same owner.
	Create(ctx context.Context, a *model.Appointment) error

	// GetByID loads an appointment regardless of owner.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// GetByIDAndOwner loads an appointment scoped to its owner.
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Appointment, error)

	// ListByOwnerAndRange returns the owner's appointments with start_at inside
	// [from, to], ordered by start_at ascending.
	ListByOwnerAndRange(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]model.Appointment, error)

	// FindConflicting returns any non-canceled appointment of the owner whose
	// interval overlaps [startAt, endAt) under the open-interval test
	// (existing.start < endAt AND existing.end > startAt). Pass uuid.Nil as
	// excludeID to check all rows. A (nil, nil) return means no conflict.
	FindConflicting(ctx context.Context, ownerID uuid.UUID, startAt, endAt time.Time, excludeID uuid.UUID) (*model.Appointment, error)

	// Update applies a partial update and returns the stored row. Returns
	// errs.ErrAppointmentConflict when a time change collides.
	Update(ctx context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error)

	// UpdateStatus sets only the status and returns the stored row.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)

	// CountUpcomingByPatient counts AGENDADO appointments of the patient
	// starting at or after the given instant.
	CountUpcomingByPatient(ctx context.Context, ownerID, patientID uuid.UUID, after time.Time) (int, error)
}
