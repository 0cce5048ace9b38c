package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
)

// In-memory fakes implementing the repository interfaces. They mirror the
// observable behavior of the Postgres implementations, including the
// exclusion-constraint conflict on insert.

type fakeApptRepo struct {
	mu                   sync.Mutex
	items                map[uuid.UUID]*model.Appointment
	findConflictingCalls int
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{items: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeApptRepo) overlaps(ownerID uuid.UUID, startAt, endAt time.Time, excludeID uuid.UUID) *model.Appointment {
	for _, a := range r.items {
		if a.OwnerID != ownerID || a.ID == excludeID || a.Status == model.StatusCanceled {
			continue
		}
		if a.StartAt.Before(endAt) && a.EndAt.After(startAt) {
			cp := *a
			return &cp
		}
	}
	return nil
}

func (r *fakeApptRepo) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Status != model.StatusCanceled {
		if c := r.overlaps(a.OwnerID, a.StartAt, a.EndAt, a.ID); c != nil {
			return errs.ErrAppointmentConflict
		}
	}
	now := time.Now().UTC()
	cp := *a
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.items[a.ID] = &cp
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (r *fakeApptRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApptRepo) GetByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApptRepo) ListByOwnerAndRange(_ context.Context, ownerID uuid.UUID, from, to time.Time) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Appointment
	for _, a := range r.items {
		if a.OwnerID != ownerID || a.StartAt.Before(from) || a.StartAt.After(to) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *fakeApptRepo) FindConflicting(_ context.Context, ownerID uuid.UUID, startAt, endAt time.Time, excludeID uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findConflictingCalls++
	return r.overlaps(ownerID, startAt, endAt, excludeID), nil
}

func (r *fakeApptRepo) Update(_ context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if patch.StartAt != nil {
		a.StartAt = *patch.StartAt
	}
	if patch.EndAt != nil {
		a.EndAt = *patch.EndAt
	}
	if patch.SetNotes {
		a.Notes = patch.Notes
	}
	if a.Status != model.StatusCanceled {
		if c := r.overlaps(a.OwnerID, a.StartAt, a.EndAt, a.ID); c != nil {
			return nil, errs.ErrAppointmentConflict
		}
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

func (r *fakeApptRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

func (r *fakeApptRepo) CountUpcomingByPatient(_ context.Context, ownerID, patientID uuid.UUID, after time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.items {
		if a.OwnerID == ownerID && a.PatientID == patientID &&
			a.Status == model.StatusScheduled && !a.StartAt.Before(after) {
			n++
		}
	}
	return n, nil
}

type fakePatientRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{items: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	cp := *p
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) GetByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) GetManyByIDs(_ context.Context, ids []uuid.UUID) ([]model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Patient
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePatientRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Patient
	for _, p := range r.items {
		if p.OwnerID == ownerID && p.DeactivatedAt == nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[p.ID]
	if !ok || stored.OwnerID != p.OwnerID {
		return nil, errs.ErrNotFound
	}
	stored.Name = p.Name
	stored.Phone = p.Phone
	stored.Notes = p.Notes
	stored.UpdatedAt = time.Now().UTC()
	cp := *stored
	return &cp, nil
}

func (r *fakePatientRepo) Deactivate(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID || p.DeactivatedAt != nil {
		return errs.ErrNotFound
	}
	now := time.Now().UTC()
	p.DeactivatedAt = &now
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.User

	// when set, GetByEmail fails with this error
	getByEmailErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.items {
		if ex.Email == u.Email {
			return errs.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	cp := *u
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getByEmailErr != nil {
		return nil, r.getByEmailErr
	}
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, pwdHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PwdHash = pwdHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok || u.DeactivatedAt != nil {
		return errs.ErrNotFound
	}
	now := time.Now().UTC()
	u.DeactivatedAt = &now
	return nil
}

type fakeTokenRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.PasswordResetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{items: make(map[uuid.UUID]*model.PasswordResetToken)}
}

func (r *fakeTokenRepo) Create(_ context.Context, t *model.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	cp.CreatedAt = time.Now().UTC()
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.items {
		if t.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeTokenRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok || t.UsedAt != nil {
		return errs.ErrInvalidResetToken
	}
	u := usedAt
	t.UsedAt = &u
	return nil
}

func (r *fakeTokenRepo) byUser(userID uuid.UUID) []model.PasswordResetToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PasswordResetToken
	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out
}

type fakeLimiter struct {
	mu       sync.Mutex
	blocked  bool
	failures int
}

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.blocked, 0, nil
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error { return nil }

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures++
	return false, 0, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
