package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/service"
)

type createAppointmentRequest struct {
	PatientID string  `json:"patient_id"`
	StartAt   string  `json:"start_at"`
	EndAt     string  `json:"end_at"`
	Notes     *string `json:"notes"`
}

// updateAppointmentRequest keeps notes as raw JSON so "absent" and "null" stay
// distinguishable: null clears the field, absent leaves it alone.
type updateAppointmentRequest struct {
	StartAt *string         `json:"start_at"`
	EndAt   *string         `json:"end_at"`
	Notes   json.RawMessage `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type appointmentResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAppointmentResponse(a *model.AppointmentWithPatient) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID.String(),
		PatientID:   a.PatientID.String(),
		PatientName: a.PatientName,
		StartAt:     a.StartAt,
		EndAt:       a.EndAt,
		Status:      string(a.Status),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	patientID, err := uuid.FromString(req.PatientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient_id")
		return
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_at must be RFC 3339")
		return
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_at must be RFC 3339")
		return
	}

	appt, err := s.appts.Create(r.Context(), ownerID, service.CreateAppointmentInput{
		PatientID: patientID,
		StartAt:   startAt,
		EndAt:     endAt,
		Notes:     req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	apptID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	appt, err := s.appts.Get(r.Context(), ownerID, apptID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	apptID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	in := service.UpdateAppointmentInput{}
	if req.StartAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_at must be RFC 3339")
			return
		}
		in.StartAt = &t
	}
	if req.EndAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_at must be RFC 3339")
			return
		}
		in.EndAt = &t
	}
	if len(req.Notes) > 0 {
		in.SetNotes = true
		if string(req.Notes) != "null" {
			var notes string
			if err := json.Unmarshal(req.Notes, &notes); err != nil {
				writeError(w, http.StatusBadRequest, "notes must be a string or null")
				return
			}
			in.Notes = &notes
		}
	}

	appt, err := s.appts.Update(r.Context(), ownerID, apptID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (s *Server) handleUpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	apptID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	status := model.AppointmentStatus(req.Status)
	if status != model.StatusCompleted && status != model.StatusCanceled {
		writeError(w, http.StatusBadRequest, "status must be REALIZADO or CANCELADO")
		return
	}

	appt, err := s.appts.UpdateStatus(r.Context(), ownerID, apptID, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	day, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	appts, err := s.appts.ListByDay(r.Context(), ownerID, day)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]appointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAppointmentDates(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	month, err := time.Parse("2006-01", r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	dates, err := s.appts.MonthDates(r.Context(), ownerID, month.Year(), month.Month())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dates": dates})
}
