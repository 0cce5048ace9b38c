package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/service"
)

type patientRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

type patientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPatientResponse(p *model.Patient) patientResponse {
	return patientResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Phone:     p.Phone,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := s.patients.Create(r.Context(), ownerID, service.PatientInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientResponse(p))
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	patientID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	p, err := s.patients.Get(r.Context(), ownerID, patientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	list, err := s.patients.List(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]patientResponse, 0, len(list))
	for i := range list {
		out = append(out, toPatientResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	patientID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := s.patients.Update(r.Context(), ownerID, patientID, service.PatientInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (s *Server) handleDeactivatePatient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	patientID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	if err := s.patients.Deactivate(r.Context(), ownerID, patientID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
