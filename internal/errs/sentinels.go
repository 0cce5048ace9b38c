// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotAllowed indicates the caller lacks the capability for the operation.
	ErrNotAllowed = errors.New("not allowed")
)

// Scheduling sentinels raised by the appointment use cases.
var (
	// ErrPatientNotFound indicates the patient is absent or not owned by the caller.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrPastAppointment indicates the requested start time has already elapsed.
	ErrPastAppointment = errors.New("appointment start time is in the past")

	// ErrAppointmentConflict indicates an overlapping active appointment exists.
	ErrAppointmentConflict = errors.New("appointment time conflict")

	// ErrAppointmentNotFound indicates no appointment with that id for this owner.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAppointmentNotEditable indicates the appointment was already completed.
	ErrAppointmentNotEditable = errors.New("appointment not editable")

	// ErrInvalidAppointmentTime indicates effective start >= effective end.
	ErrInvalidAppointmentTime = errors.New("invalid appointment time")

	// ErrPatientHasAppointments blocks deactivation while future scheduled
	// appointments remain.
	ErrPatientHasAppointments = errors.New("patient has future appointments")
)

// Account/password-reset sentinels.
var (
	// ErrUserNotFound indicates the email is not registered. The HTTP boundary
	// must translate this into the same response as ErrInvalidResetToken during
	// password reset to keep the API enumeration-safe.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates a failed email/password login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidResetToken covers wrong code, mismatched owner, and already-used
	// tokens. These cases are deliberately indistinguishable.
	ErrInvalidResetToken = errors.New("invalid reset token")

	// ErrResetTokenExpired indicates a correct, unused code past its expiry.
	ErrResetTokenExpired = errors.New("reset token expired")
)
