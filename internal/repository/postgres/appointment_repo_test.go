package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var apptColNames = []string{"id", "owner_id", "patient_id", "start_at", "end_at", "status", "notes", "created_at", "updated_at"}

func apptRow(a *model.Appointment) *pgxmock.Rows {
	return pgxmock.NewRows(apptColNames).
		AddRow(a.ID, a.OwnerID, a.PatientID, a.StartAt, a.EndAt, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt)
}

func sampleAppt() *model.Appointment {
	start := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	return &model.Appointment{
		ID:        uuid.Must(uuid.NewV4()),
		OwnerID:   uuid.Must(uuid.NewV4()),
		PatientID: uuid.Must(uuid.NewV4()),
		StartAt:   start,
		EndAt:     start.Add(30 * time.Minute),
		Status:    model.StatusScheduled,
		CreatedAt: start.Add(-time.Hour),
		UpdatedAt: start.Add(-time.Hour),
	}
}

func TestAppointmentRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(a.ID, a.OwnerID, a.PatientID, a.StartAt, a.EndAt, a.Status, a.Notes).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, r.Create(context.Background(), a))
	require.Equal(t, now, a.CreatedAt)
}

func TestAppointmentRepo_Create_ExclusionConflict(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(a.ID, a.OwnerID, a.PatientID, a.StartAt, a.EndAt, a.Status, a.Notes).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})

	err := r.Create(context.Background(), a)
	require.ErrorIs(t, err, errs.ErrAppointmentConflict)
}

func TestAppointmentRepo_GetByIDAndOwner_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	id := uuid.Must(uuid.NewV4())
	ownerID := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE id=\$1 AND owner_id=\$2`).
		WithArgs(id, ownerID).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByIDAndOwner(context.Background(), id, ownerID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAppointmentRepo_FindConflicting_Hit(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	mock.ExpectQuery(`(?s)SELECT .+ FROM appointments.+WHERE owner_id=\$1 AND status <> 'CANCELADO' AND start_at < \$3 AND end_at > \$2 LIMIT 1`).
		WithArgs(a.OwnerID, a.StartAt, a.EndAt).
		WillReturnRows(apptRow(a))

	got, err := r.FindConflicting(context.Background(), a.OwnerID, a.StartAt, a.EndAt, uuid.Nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, a.ID, got.ID)
}

func TestAppointmentRepo_FindConflicting_Miss(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	mock.ExpectQuery(`(?s)SELECT .+ FROM appointments.+WHERE owner_id=\$1 AND status <> 'CANCELADO' AND start_at < \$3 AND end_at > \$2 LIMIT 1`).
		WithArgs(a.OwnerID, a.StartAt, a.EndAt).
		WillReturnError(pgx.ErrNoRows)

	got, err := r.FindConflicting(context.Background(), a.OwnerID, a.StartAt, a.EndAt, uuid.Nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAppointmentRepo_FindConflicting_ExcludesSelf(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	mock.ExpectQuery(`(?s)SELECT .+ FROM appointments.+WHERE owner_id=\$1 AND status <> 'CANCELADO' AND start_at < \$3 AND end_at > \$2 AND id <> \$4 LIMIT 1`).
		WithArgs(a.OwnerID, a.StartAt, a.EndAt, a.ID).
		WillReturnError(pgx.ErrNoRows)

	got, err := r.FindConflicting(context.Background(), a.OwnerID, a.StartAt, a.EndAt, a.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAppointmentRepo_Update_NotesOnly(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	notes := "bring exam results"
	a.Notes = &notes
	mock.ExpectQuery(`UPDATE appointments SET updated_at = now\(\), notes = \$2 WHERE id = \$1 RETURNING`).
		WithArgs(a.ID, &notes).
		WillReturnRows(apptRow(a))

	got, err := r.Update(context.Background(), a.ID, model.AppointmentPatch{Notes: &notes, SetNotes: true})
	require.NoError(t, err)
	require.Equal(t, &notes, got.Notes)
}

func TestAppointmentRepo_Update_TimeConflict(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	newStart := a.StartAt.Add(time.Hour)
	mock.ExpectQuery(`UPDATE appointments SET updated_at = now\(\), start_at = \$2 WHERE id = \$1 RETURNING`).
		WithArgs(a.ID, newStart).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})

	_, err := r.Update(context.Background(), a.ID, model.AppointmentPatch{StartAt: &newStart})
	require.ErrorIs(t, err, errs.ErrAppointmentConflict)
}

func TestAppointmentRepo_Update_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	id := uuid.Must(uuid.NewV4())
	notes := "x"
	mock.ExpectQuery(`UPDATE appointments SET`).
		WithArgs(id, &notes).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Update(context.Background(), id, model.AppointmentPatch{Notes: &notes, SetNotes: true})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAppointmentRepo_UpdateStatus_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	a.Status = model.StatusCanceled
	mock.ExpectQuery(`UPDATE appointments SET status = \$2, updated_at = now\(\)`).
		WithArgs(a.ID, model.StatusCanceled).
		WillReturnRows(apptRow(a))

	got, err := r.UpdateStatus(context.Background(), a.ID, model.StatusCanceled)
	require.NoError(t, err)
	require.Equal(t, model.StatusCanceled, got.Status)
}

func TestAppointmentRepo_UpdateStatus_UncancelConflict(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	// completing a canceled appointment puts its window back under the
	// overlap constraint; another booking may have taken the slot meanwhile
	a := sampleAppt()
	mock.ExpectQuery(`UPDATE appointments SET status = \$2, updated_at = now\(\)`).
		WithArgs(a.ID, model.StatusCompleted).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})

	_, err := r.UpdateStatus(context.Background(), a.ID, model.StatusCompleted)
	require.ErrorIs(t, err, errs.ErrAppointmentConflict)
}

func TestAppointmentRepo_ListByOwnerAndRange(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	a := sampleAppt()
	b := *a
	b.ID = uuid.Must(uuid.NewV4())
	b.StartAt = a.StartAt.Add(time.Hour)
	b.EndAt = a.EndAt.Add(time.Hour)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)
	mock.ExpectQuery(`(?s)SELECT .+ FROM appointments.+WHERE owner_id=\$1 AND start_at >= \$2 AND start_at <= \$3.+ORDER BY start_at ASC`).
		WithArgs(a.OwnerID, from, to).
		WillReturnRows(apptRow(a).AddRow(b.ID, b.OwnerID, b.PatientID, b.StartAt, b.EndAt, b.Status, b.Notes, b.CreatedAt, b.UpdatedAt))

	got, err := r.ListByOwnerAndRange(context.Background(), a.OwnerID, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, a.ID, got[0].ID)
	require.Equal(t, b.ID, got[1].ID)
}

func TestAppointmentRepo_CountUpcomingByPatient(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAppointmentRepo(db)

	ownerID := uuid.Must(uuid.NewV4())
	patientID := uuid.Must(uuid.NewV4())
	after := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT count\(\*\) FROM appointments`).
		WithArgs(ownerID, patientID, after).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := r.CountUpcomingByPatient(context.Background(), ownerID, patientID, after)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
