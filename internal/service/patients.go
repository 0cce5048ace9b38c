package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/agendaclin/agendaclin/internal/clock"
	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/repository"
)

// PatientInput carries validated patient fields.
type PatientInput struct {
	Name  string
	Phone *string
	Notes *string
}

// PatientService manages the practitioner's patient roster. Deactivation is
// soft: historical appointments keep pointing at the record.
type PatientService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in PatientInput) (*model.Patient, error)
	Get(ctx context.Context, ownerID, patientID uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Patient, error)
	Update(ctx context.Context, ownerID, patientID uuid.UUID, in PatientInput) (*model.Patient, error)
	// Deactivate refuses while the patient still has future scheduled
	// appointments; cancel or complete them first.
	Deactivate(ctx context.Context, ownerID, patientID uuid.UUID) error
}

type PatientServiceImpl struct {
	patients repository.PatientRepository
	appts    repository.AppointmentRepository
	clk      clock.Clock
}

// NewPatientService constructs PatientService with required dependencies.
func NewPatientService(patients repository.PatientRepository, appts repository.AppointmentRepository, clk clock.Clock) *PatientServiceImpl {
	return &PatientServiceImpl{patients: patients, appts: appts, clk: clk}
}

func validatePatientName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return "", errors.New("validation: name must have at least 2 characters")
	}
	return name, nil
}

func (s *PatientServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in PatientInput) (*model.Patient, error) {
	name, err := validatePatientName(in.Name)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.Patient{
		ID:      id,
		OwnerID: ownerID,
		Name:    name,
		Phone:   in.Phone,
		Notes:   in.Notes,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientServiceImpl) Get(ctx context.Context, ownerID, patientID uuid.UUID) (*model.Patient, error) {
	p, err := s.patients.GetByIDAndOwner(ctx, patientID, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PatientServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]model.Patient, error) {
	return s.patients.ListByOwner(ctx, ownerID)
}

func (s *PatientServiceImpl) Update(ctx context.Context, ownerID, patientID uuid.UUID, in PatientInput) (*model.Patient, error) {
	name, err := validatePatientName(in.Name)
	if err != nil {
		return nil, err
	}
	existing, err := s.patients.GetByIDAndOwner(ctx, patientID, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrPatientNotFound
		}
		return nil, err
	}
	existing.Name = name
	existing.Phone = in.Phone
	existing.Notes = in.Notes
	updated, err := s.patients.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrPatientNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *PatientServiceImpl) Deactivate(ctx context.Context, ownerID, patientID uuid.UUID) error {
	if _, err := s.patients.GetByIDAndOwner(ctx, patientID, ownerID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrPatientNotFound
		}
		return err
	}

	n, err := s.appts.CountUpcomingByPatient(ctx, ownerID, patientID, s.clk.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.ErrPatientHasAppointments
	}

	err = s.patients.Deactivate(ctx, patientID, ownerID)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrPatientNotFound
	}
	return err
}
