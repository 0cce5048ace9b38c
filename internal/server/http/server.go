package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agendaclin/agendaclin/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	appts    service.AppointmentService
	patients service.PatientService
	reset    service.PasswordResetService
	admin    service.UserAdminService
	signKey  []byte
	log      *zap.Logger
}

// New constructs a Server with injected services.
func New(auth service.AuthService, appts service.AppointmentService, patients service.PatientService, reset service.PasswordResetService, admin service.UserAdminService, signKey []byte, log *zap.Logger) *Server {
	return &Server{
		auth:     auth,
		appts:    appts,
		patients: patients,
		reset:    reset,
		admin:    admin,
		signKey:  signKey,
		log:      log,
	}
}

// Handler builds the route tree. Open endpoints are IP rate limited; the rest
// of /api/ sits behind bearer-JWT auth.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	open := NewIPRateLimiter(5, 10)
	mux.HandleFunc("POST /api/register", open.Limit(s.handleRegister))
	mux.HandleFunc("POST /api/login", open.Limit(s.handleLogin))
	mux.HandleFunc("POST /api/password/forgot", open.Limit(s.handleForgotPassword))
	mux.HandleFunc("POST /api/password/reset", open.Limit(s.handleResetPassword))

	api := http.NewServeMux()
	api.HandleFunc("POST /api/appointments", s.handleCreateAppointment)
	api.HandleFunc("GET /api/appointments", s.handleListAppointments)
	api.HandleFunc("GET /api/appointments/dates", s.handleAppointmentDates)
	api.HandleFunc("GET /api/appointments/{id}", s.handleGetAppointment)
	api.HandleFunc("PATCH /api/appointments/{id}", s.handleUpdateAppointment)
	api.HandleFunc("PATCH /api/appointments/{id}/status", s.handleUpdateAppointmentStatus)

	api.HandleFunc("POST /api/patients", s.handleCreatePatient)
	api.HandleFunc("GET /api/patients", s.handleListPatients)
	api.HandleFunc("GET /api/patients/{id}", s.handleGetPatient)
	api.HandleFunc("PUT /api/patients/{id}", s.handleUpdatePatient)
	api.HandleFunc("DELETE /api/patients/{id}", s.handleDeactivatePatient)

	api.HandleFunc("GET /api/admin/users", s.handleListUsers)
	api.HandleFunc("DELETE /api/admin/users/{id}", s.handleDeactivateUser)

	// exact open patterns above take precedence over this subtree
	mux.Handle("/api/", Auth(s.signKey)(api))

	var h http.Handler = mux
	h = Logging(s.log)(h)
	h = Recover(s.log)(h)
	return h
}
