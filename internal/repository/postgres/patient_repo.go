package postgres

import (
	"context"
	"errors"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// PatientRepo implements PatientRepository using PostgreSQL.
type PatientRepo struct{ db *DB }

// NewPatientRepo constructs a patient repository.
func NewPatientRepo(db *DB) *PatientRepo { return &PatientRepo{db: db} }

const patientCols = `id, owner_id, name, phone, notes, deactivated_at, created_at, updated_at`

func scanPatient(row pgx.Row) (*model.Patient, error) {
	var p model.Patient
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.Notes,
		&p.DeactivatedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new patient row.
func (r *PatientRepo) Create(ctx context.Context, p *model.Patient) error {
	const q = `
INSERT INTO patients (id, owner_id, name, phone, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, p.ID, p.OwnerID, p.Name, p.Phone, p.Notes).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetByID selects a patient by id regardless of owner.
func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	const q = `SELECT ` + patientCols + ` FROM patients WHERE id=$1`
	p, err := scanPatient(r.db.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return p, err
}

// GetByIDAndOwner selects a patient scoped to its owner. Deactivation does not
// hide the record here: a deactivated patient can still be booked and keeps
// its history. Only listing filters on deactivated_at.
func (r *PatientRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Patient, error) {
	const q = `SELECT ` + patientCols + ` FROM patients WHERE id=$1 AND owner_id=$2`
	p, err := scanPatient(r.db.Pool.QueryRow(ctx, q, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return p, err
}

// GetManyByIDs selects the given patients in one query. Missing ids are
// simply absent from the result.
func (r *PatientRepo) GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + patientCols + ` FROM patients WHERE id = ANY($1)`
	rows, err := r.db.Pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.Notes,
			&p.DeactivatedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByOwner returns active patients of the owner ordered by name.
func (r *PatientRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Patient, error) {
	const q = `
SELECT ` + patientCols + `
FROM patients
WHERE owner_id=$1 AND deactivated_at IS NULL
ORDER BY name ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.Notes,
			&p.DeactivatedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update overwrites name/phone/notes and returns the stored row.
func (r *PatientRepo) Update(ctx context.Context, p *model.Patient) (*model.Patient, error) {
	const q = `
UPDATE patients SET name=$3, phone=$4, notes=$5, updated_at=now()
WHERE id=$1 AND owner_id=$2
RETURNING ` + patientCols
	stored, err := scanPatient(r.db.Pool.QueryRow(ctx, q, p.ID, p.OwnerID, p.Name, p.Phone, p.Notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return stored, err
}

// Deactivate sets deactivated_at on an active patient.
func (r *PatientRepo) Deactivate(ctx context.Context, id, ownerID uuid.UUID) error {
	const q = `
UPDATE patients SET deactivated_at=now(), updated_at=now()
WHERE id=$1 AND owner_id=$2 AND deactivated_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
