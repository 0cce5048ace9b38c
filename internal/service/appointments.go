// Package service contains application services for scheduling, accounts and
// password reset.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/agendaclin/agendaclin/internal/clock"
	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/repository"
)

// unknownPatientName is the display name used when the patient record behind
// an existing appointment can no longer be resolved.
const unknownPatientName = "Unknown"

// CreateAppointmentInput carries input for a new appointment.
type CreateAppointmentInput struct {
	PatientID uuid.UUID
	StartAt   time.Time
	EndAt     time.Time
	Notes     *string
}

// UpdateAppointmentInput carries a partial update. Nil time fields keep the
// stored value. Notes is applied only when SetNotes is true; nil with SetNotes
// clears the stored notes.
type UpdateAppointmentInput struct {
	StartAt  *time.Time
	EndAt    *time.Time
	Notes    *string
	SetNotes bool
}

// AppointmentService enforces the scheduling invariants: no double-booking,
// no past-dated creation, and immutability of completed appointments.
type AppointmentService interface {
	// Create books a new slot for the owner.
	Create(ctx context.Context, ownerID uuid.UUID, in CreateAppointmentInput) (*model.AppointmentWithPatient, error)
	// Update reschedules and/or edits notes of an existing appointment.
	Update(ctx context.Context, ownerID, apptID uuid.UUID, in UpdateAppointmentInput) (*model.AppointmentWithPatient, error)
	// UpdateStatus completes or cancels an appointment.
	UpdateStatus(ctx context.Context, ownerID, apptID uuid.UUID, status model.AppointmentStatus) (*model.AppointmentWithPatient, error)
	// Get returns one appointment of the owner.
	Get(ctx context.Context, ownerID, apptID uuid.UUID) (*model.AppointmentWithPatient, error)
	// ListByDay returns the owner's appointments of one UTC calendar day.
	ListByDay(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]model.AppointmentWithPatient, error)
	// MonthDates returns the distinct calendar dates of a month that carry at
	// least one appointment, sorted ascending as YYYY-MM-DD.
	MonthDates(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) ([]string, error)
}

type AppointmentServiceImpl struct {
	appts    repository.AppointmentRepository
	patients repository.PatientRepository
	clk      clock.Clock
}

// NewAppointmentService constructs AppointmentService with required dependencies.
func NewAppointmentService(appts repository.AppointmentRepository, patients repository.PatientRepository, clk clock.Clock) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{appts: appts, patients: patients, clk: clk}
}

// Create books a slot. Order of checks: window validity, patient ownership,
// past start, overlap. Only the start instant is compared against now.
func (s *AppointmentServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in CreateAppointmentInput) (*model.AppointmentWithPatient, error) {
	if !in.StartAt.Before(in.EndAt) {
		return nil, errs.ErrInvalidAppointmentTime
	}

	patient, err := s.patients.GetByIDAndOwner(ctx, in.PatientID, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrPatientNotFound
		}
		return nil, err
	}

	if in.StartAt.Before(s.clk.Now()) {
		return nil, errs.ErrPastAppointment
	}

	conflict, err := s.appts.FindConflicting(ctx, ownerID, in.StartAt, in.EndAt, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, errs.ErrAppointmentConflict
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	appt := &model.Appointment{
		ID:        id,
		OwnerID:   ownerID,
		PatientID: in.PatientID,
		StartAt:   in.StartAt,
		EndAt:     in.EndAt,
		Status:    model.StatusScheduled,
		Notes:     in.Notes,
	}
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, err
	}
	return &model.AppointmentWithPatient{Appointment: *appt, PatientName: patient.Name}, nil
}

// Update reschedules and/or edits notes. A completed appointment is frozen;
// a canceled one stays editable. The overlap re-check runs only when a time
// field was provided, excluding the appointment itself.
func (s *AppointmentServiceImpl) Update(ctx context.Context, ownerID, apptID uuid.UUID, in UpdateAppointmentInput) (*model.AppointmentWithPatient, error) {
	existing, err := s.appts.GetByIDAndOwner(ctx, apptID, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrAppointmentNotFound
		}
		return nil, err
	}
	if existing.Status == model.StatusCompleted {
		return nil, errs.ErrAppointmentNotEditable
	}

	startAt := existing.StartAt
	if in.StartAt != nil {
		startAt = *in.StartAt
	}
	endAt := existing.EndAt
	if in.EndAt != nil {
		endAt = *in.EndAt
	}
	if !startAt.Before(endAt) {
		return nil, errs.ErrInvalidAppointmentTime
	}

	if in.StartAt != nil || in.EndAt != nil {
		conflict, err := s.appts.FindConflicting(ctx, ownerID, startAt, endAt, apptID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, errs.ErrAppointmentConflict
		}
	}

	updated, err := s.appts.Update(ctx, apptID, model.AppointmentPatch{
		StartAt:  in.StartAt,
		EndAt:    in.EndAt,
		Notes:    in.Notes,
		SetNotes: in.SetNotes,
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, updated), nil
}

// UpdateStatus completes or cancels. No overlap re-check: the time window is
// unchanged by a status transition.
func (s *AppointmentServiceImpl) UpdateStatus(ctx context.Context, ownerID, apptID uuid.UUID, status model.AppointmentStatus) (*model.AppointmentWithPatient, error) {
	if status != model.StatusCompleted && status != model.StatusCanceled {
		return nil, fmt.Errorf("validation: status %q not allowed", status)
	}

	existing, err := s.appts.GetByIDAndOwner(ctx, apptID, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrAppointmentNotFound
		}
		return nil, err
	}
	if existing.Status == model.StatusCompleted {
		return nil, errs.ErrAppointmentNotEditable
	}

	updated, err := s.appts.UpdateStatus(ctx, apptID, status)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, updated), nil
}

// Get returns one appointment of the owner with the patient name attached.
func (s *AppointmentServiceImpl) Get(ctx context.Context, ownerID, apptID uuid.UUID) (*model.AppointmentWithPatient, error) {
	appt, err := s.appts.GetByIDAndOwner(ctx, apptID, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrAppointmentNotFound
		}
		return nil, err
	}
	return s.enrich(ctx, appt), nil
}

// ListByDay fetches the owner's appointments whose start lies inside the UTC
// day [00:00:00.000, 23:59:59.999], store order (start ascending) preserved.
func (s *AppointmentServiceImpl) ListByDay(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]model.AppointmentWithPatient, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	appts, err := s.appts.ListByOwnerAndRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	names, err := s.patientNames(ctx, appts)
	if err != nil {
		return nil, err
	}
	out := make([]model.AppointmentWithPatient, 0, len(appts))
	for _, a := range appts {
		name, ok := names[a.PatientID]
		if !ok {
			name = unknownPatientName
		}
		out = append(out, model.AppointmentWithPatient{Appointment: a, PatientName: name})
	}
	return out, nil
}

// MonthDates reduces the month's appointments to the distinct set of calendar
// dates (start instant truncated to its date), sorted ascending.
func (s *AppointmentServiceImpl) MonthDates(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) ([]string, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)

	appts, err := s.appts.ListByOwnerAndRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(appts))
	dates := make([]string, 0, len(appts))
	for _, a := range appts {
		d := a.StartAt.UTC().Format("2006-01-02")
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

// enrich attaches the patient display name, falling back to a sentinel when
// the patient record is gone. Lookup is by id only: the appointment itself is
// already owner-checked.
func (s *AppointmentServiceImpl) enrich(ctx context.Context, a *model.Appointment) *model.AppointmentWithPatient {
	name := unknownPatientName
	if p, err := s.patients.GetByID(ctx, a.PatientID); err == nil {
		name = p.Name
	}
	return &model.AppointmentWithPatient{Appointment: *a, PatientName: name}
}

func (s *AppointmentServiceImpl) patientNames(ctx context.Context, appts []model.Appointment) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(appts))
	seen := make(map[uuid.UUID]struct{}, len(appts))
	for _, a := range appts {
		if _, ok := seen[a.PatientID]; ok {
			continue
		}
		seen[a.PatientID] = struct{}{}
		ids = append(ids, a.PatientID)
	}
	patients, err := s.patients.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(patients))
	for _, p := range patients {
		names[p.ID] = p.Name
	}
	return names, nil
}
