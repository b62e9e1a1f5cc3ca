package domain

import (
	"context"
	"time"
)

// Application is a seeker's request to be considered for a job.
type Application struct {
	ID           int64             `json:"id"`
	SeekerUserID string            `json:"seeker_user_id"`
	JobID        int64             `json:"job_id"`
	Status       ApplicationStatus `json:"status"`
	AppliedAt    time.Time         `json:"applied_at"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`

	// Joined data for list responses
	CompanyUserID string `json:"company_user_id,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	SeekerName    string `json:"seeker_name,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// DecisionResult reports the outcome of a company decision. Match is set only on accept.
type DecisionResult struct {
	Application *Application `json:"application"`
	Match       *Match       `json:"match,omitempty"`
	IsMatch     bool         `json:"is_match"`
}

// SwipeResult is returned to a seeker after swiping a job.
type SwipeResult struct {
	Direction   SwipeDirection `json:"direction"`
	Applied     bool           `json:"applied"`
	Message     string         `json:"message"`
	Application *Application   `json:"application,omitempty"`
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	Exists(ctx context.Context, seekerID string, jobID int64) (bool, error)
	// Create inserts a PENDING application. A racing duplicate returns ErrDuplicateApplication.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	// GetByIDForUpdate locks the row for the rest of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*Application, error)
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus, reviewedAt time.Time) error
	// PromoteViewed moves the listed PENDING applications to VIEWED and returns the ids it changed.
	// Rows that left PENDING in the meantime are left alone.
	PromoteViewed(ctx context.Context, ids []int64, reviewedAt time.Time) ([]int64, error)
	ListReviewable(ctx context.Context, jobID int64, limit, offset int) ([]Application, int64, error)
	ListBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]Application, int64, error)
	ListReviewedBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]Application, int64, error)
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	// Seeker operations
	ApplyToJob(ctx context.Context, seekerID string, jobID int64) (*Application, error)
	SwipeJob(ctx context.Context, seekerID string, jobID int64, direction SwipeDirection) (*SwipeResult, error)
	MyApplications(ctx context.Context, seekerID string, page, pageSize int) (*Page[Application], error)
	ProfileViews(ctx context.Context, seekerID string, page, pageSize int) (*Page[Application], error)

	// Company operations
	ReviewApplicants(ctx context.Context, companyID string, jobID int64, page, pageSize int) (*Page[Application], error)
	MarkViewed(ctx context.Context, companyID string, applicationID int64) (*Application, error)
	Decide(ctx context.Context, companyID string, applicationID int64, decision Decision) (*DecisionResult, error)
	SwipeApplicant(ctx context.Context, companyID string, applicationID int64, direction SwipeDirection) (*DecisionResult, error)
}

// TxManager runs fn inside one storage transaction bound to ctx.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
