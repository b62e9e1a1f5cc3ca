package domain

import "errors"

// Domain errors. Usecases wrap these in apperror.AppError so the HTTP layer can
// render them while callers still match with errors.Is.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAccessDenied         = errors.New("access denied")
	ErrNotAParticipant      = errors.New("user is not a participant of this chat room")
	ErrDuplicateApplication = errors.New("already applied to this job")
	ErrMatchAlreadyExists   = errors.New("match already exists for this application")
	ErrInvalidTransition    = errors.New("invalid application status transition")
	ErrSamePair             = errors.New("cannot open a chat room with yourself")
)
