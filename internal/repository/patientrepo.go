package repository

import (
	"context"

	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PatientRepository provides CRUD access for patients.
type PatientRepository interface {
	// Create inserts a new patient.
	Create(ctx context.Context, p *model.Patient) error
	// GetByID loads a patient regardless of owner (display/enrichment only).
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	// GetByIDAndOwner loads a patient scoped to its owner.
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Patient, error)
	// GetManyByIDs loads the given patients in one query.
	GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Patient, error)
	// ListByOwner returns the owner's active patients ordered by name.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Patient, error)
	// Update overwrites name/phone/notes and returns the stored row.
	Update(ctx context.Context, p *model.Patient) (*model.Patient, error)
	// Deactivate sets deactivated_at for an active patient.
	Deactivate(ctx context.Context, id, ownerID uuid.UUID) error
}
