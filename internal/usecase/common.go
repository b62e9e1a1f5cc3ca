package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
)

const (
	DefaultQueryTimeout = 5 * time.Second
	defaultPageSize     = 20
	maxPageSize         = 100
)

// boundedContext caps how long a usecase may wait on storage.
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// paginate clamps page and pageSize and returns the matching limit and offset.
func paginate(page, pageSize int) (p, size, limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}

// storageError turns a repository error into an AppError, rendering ErrNotFound with msg.
func storageError(err error, notFoundMsg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.New(http.StatusNotFound, notFoundMsg, domain.ErrNotFound)
	}
	return apperror.FromStorage(err)
}

func accessDenied(msg string) error {
	return apperror.New(http.StatusForbidden, msg, domain.ErrAccessDenied)
}

func notAParticipant() error {
	return apperror.New(http.StatusForbidden, "You are not a participant of this chat", domain.ErrNotAParticipant)
}

func duplicateApplication() error {
	return apperror.New(http.StatusBadRequest, "You have already applied to this job", domain.ErrDuplicateApplication)
}

func invalidTransition(from domain.ApplicationStatus) error {
	return apperror.New(http.StatusConflict, "Application is already "+string(from), domain.ErrInvalidTransition)
}
