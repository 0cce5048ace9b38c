package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// AppointmentRepo implements AppointmentRepository using PostgreSQL.
type AppointmentRepo struct{ db *DB }

// NewAppointmentRepo constructs an appointment repository.
func NewAppointmentRepo(db *DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const apptCols = `id, owner_id, patient_id, start_at, end_at, status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.OwnerID, &a.PatientID, &a.StartAt, &a.EndAt,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new appointment row. The appointments_no_overlap exclusion
// constraint rejects slots colliding with an active appointment of the same
// owner, so a concurrent create racing past FindConflicting still fails here.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	const q = `
INSERT INTO appointments (id, owner_id, patient_id, start_at, end_at, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, a.ID, a.OwnerID, a.PatientID, a.StartAt, a.EndAt, a.Status, a.Notes).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if isExclusionViolation(err) {
		return errs.ErrAppointmentConflict
	}
	return err
}

// GetByID selects an appointment by id regardless of owner.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments WHERE id=$1`
	a, err := scanAppointment(r.db.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return a, err
}

// GetByIDAndOwner selects an appointment scoped to its owner.
func (r *AppointmentRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments WHERE id=$1 AND owner_id=$2`
	a, err := scanAppointment(r.db.Pool.QueryRow(ctx, q, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return a, err
}

// ListByOwnerAndRange returns appointments whose start_at lies in [from, to],
// ordered by start_at ascending.
func (r *AppointmentRepo) ListByOwnerAndRange(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]model.Appointment, error) {
	const q = `
SELECT ` + apptCols + `
FROM appointments
WHERE owner_id=$1 AND start_at >= $2 AND start_at <= $3
ORDER BY start_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.PatientID, &a.StartAt, &a.EndAt,
			&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindConflicting returns a non-canceled appointment of the owner overlapping
// [startAt, endAt) under the open-interval test; boundaries that merely touch
// do not overlap. (nil, nil) means the slot is free.
func (r *AppointmentRepo) FindConflicting(ctx context.Context, ownerID uuid.UUID, startAt, endAt time.Time, excludeID uuid.UUID) (*model.Appointment, error) {
	q := `
SELECT ` + apptCols + `
FROM appointments
WHERE owner_id=$1 AND status <> 'CANCELADO' AND start_at < $3 AND end_at > $2`
	args := []any{ownerID, startAt, endAt}
	if excludeID != uuid.Nil {
		q += ` AND id <> $4`
		args = append(args, excludeID)
	}
	q += ` LIMIT 1`

	a, err := scanAppointment(r.db.Pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Update applies only the fields present in the patch and returns the stored row.
func (r *AppointmentRepo) Update(ctx context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}
	next := 2
	if patch.StartAt != nil {
		set = append(set, fmt.Sprintf("start_at = $%d", next))
		args = append(args, *patch.StartAt)
		next++
	}
	if patch.EndAt != nil {
		set = append(set, fmt.Sprintf("end_at = $%d", next))
		args = append(args, *patch.EndAt)
		next++
	}
	if patch.SetNotes {
		set = append(set, fmt.Sprintf("notes = $%d", next))
		args = append(args, patch.Notes)
		next++
	}

	q := `UPDATE appointments SET ` + strings.Join(set, ", ") +
		` WHERE id = $1 RETURNING ` + apptCols
	a, err := scanAppointment(r.db.Pool.QueryRow(ctx, q, args...))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, errs.ErrNotFound
	case isExclusionViolation(err):
		return nil, errs.ErrAppointmentConflict
	}
	return a, err
}

// UpdateStatus sets only the status column and returns the stored row.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	const q = `
UPDATE appointments SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + apptCols
	a, err := scanAppointment(r.db.Pool.QueryRow(ctx, q, id, status))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, errs.ErrNotFound
	// un-canceling re-enters the row into the overlap constraint
	case isExclusionViolation(err):
		return nil, errs.ErrAppointmentConflict
	}
	return a, err
}

// CountUpcomingByPatient counts scheduled appointments of the patient starting
// at or after the given instant.
func (r *AppointmentRepo) CountUpcomingByPatient(ctx context.Context, ownerID, patientID uuid.UUID, after time.Time) (int, error) {
	const q = `
SELECT count(*) FROM appointments
WHERE owner_id=$1 AND patient_id=$2 AND status='AGENDADO' AND start_at >= $3`
	var n int
	err := r.db.Pool.QueryRow(ctx, q, ownerID, patientID, after).Scan(&n)
	return n, err
}
