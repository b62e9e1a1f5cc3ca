package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
	"go-jobswipe-backend/pkg/security"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	matchUC         domain.MatchUsecase
	txManager       domain.TxManager
	audit           *security.SecurityLogger
	timeout         time.Duration
	now             func() time.Time
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	matchUC domain.MatchUsecase,
	txManager domain.TxManager,
	audit *security.SecurityLogger,
	timeout time.Duration,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		matchUC:         matchUC,
		txManager:       txManager,
		audit:           audit,
		timeout:         timeout,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// ApplyToJob lets a seeker apply to an active job once
func (uc *applicationUsecase) ApplyToJob(ctx context.Context, seekerID string, jobID int64) (*domain.Application, error) {
	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	// 1. Validate job exists and is active
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, storageError(err, "Job not found")
	}
	if !job.IsActive {
		return nil, apperror.BadRequest("Cannot apply to inactive job")
	}

	// 2. Check for duplicate application
	exists, err := uc.applicationRepo.Exists(ctx, seekerID, jobID)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if exists {
		return nil, duplicateApplication()
	}

	// 3. Create application. The unique constraint catches a concurrent duplicate.
	app := &domain.Application{
		SeekerUserID:  seekerID,
		JobID:         jobID,
		Status:        domain.StatusPending,
		AppliedAt:     uc.now(),
		CompanyUserID: job.CompanyUserID,
		JobTitle:      job.Title,
	}
	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrDuplicateApplication) {
			return nil, duplicateApplication()
		}
		return nil, apperror.FromStorage(err)
	}

	return app, nil
}

// SwipeJob skips a job on LEFT and applies on RIGHT
func (uc *applicationUsecase) SwipeJob(ctx context.Context, seekerID string, jobID int64, direction domain.SwipeDirection) (*domain.SwipeResult, error) {
	if direction == domain.SwipeLeft {
		qctx, cancel := boundedContext(ctx, uc.timeout)
		defer cancel()
		if _, err := uc.jobRepo.GetByID(qctx, jobID); err != nil {
			return nil, storageError(err, "Job not found")
		}
		return &domain.SwipeResult{Direction: direction, Message: "Job skipped"}, nil
	}

	app, err := uc.ApplyToJob(ctx, seekerID, jobID)
	if err != nil {
		return nil, err
	}
	return &domain.SwipeResult{Direction: direction, Applied: true, Message: "Application submitted", Application: app}, nil
}

// MyApplications lists a seeker's applications, newest first
func (uc *applicationUsecase) MyApplications(ctx context.Context, seekerID string, page, pageSize int) (*domain.Page[domain.Application], error) {
	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	page, pageSize, limit, offset := paginate(page, pageSize)
	items, total, err := uc.applicationRepo.ListBySeeker(ctx, seekerID, limit, offset)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	return &domain.Page[domain.Application]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// ProfileViews lists applications a company has looked at, most recent first
func (uc *applicationUsecase) ProfileViews(ctx context.Context, seekerID string, page, pageSize int) (*domain.Page[domain.Application], error) {
	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	page, pageSize, limit, offset := paginate(page, pageSize)
	items, total, err := uc.applicationRepo.ListReviewedBySeeker(ctx, seekerID, limit, offset)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	return &domain.Page[domain.Application]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// ReviewApplicants returns the open applications of a job and marks the pending ones viewed
func (uc *applicationUsecase) ReviewApplicants(ctx context.Context, companyID string, jobID int64, page, pageSize int) (*domain.Page[domain.Application], error) {
	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	// 1. Validate company owns this job
	if err := uc.validateJobOwnership(ctx, companyID, jobID); err != nil {
		return nil, err
	}

	// 2. Fetch PENDING and VIEWED applications, oldest first
	page, pageSize, limit, offset := paginate(page, pageSize)
	items, total, err := uc.applicationRepo.ListReviewable(ctx, jobID, limit, offset)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	// 3. Promote the returned PENDING rows in one statement
	var pending []int64
	for _, app := range items {
		if app.Status == domain.StatusPending {
			pending = append(pending, app.ID)
		}
	}
	if len(pending) > 0 {
		now := uc.now()
		promoted, err := uc.applicationRepo.PromoteViewed(ctx, pending, now)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		changed := make(map[int64]bool, len(promoted))
		for _, id := range promoted {
			changed[id] = true
		}
		for i := range items {
			if items[i].Status != domain.StatusPending {
				continue
			}
			if changed[items[i].ID] {
				items[i].Status = domain.StatusViewed
				items[i].ReviewedAt = &now
				continue
			}
			// Decided between the listing and the promotion; report what is stored now.
			current, err := uc.applicationRepo.GetByID(ctx, items[i].ID)
			if err != nil {
				return nil, apperror.FromStorage(err)
			}
			items[i] = *current
		}
	}

	return &domain.Page[domain.Application]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// MarkViewed moves a PENDING application to VIEWED. Anything further along is left untouched.
func (uc *applicationUsecase) MarkViewed(ctx context.Context, companyID string, applicationID int64) (*domain.Application, error) {
	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, storageError(err, "Application not found")
	}
	if app.CompanyUserID != companyID {
		uc.audit.LogOwnershipViolation(ctx, companyID, "application:"+strconv.FormatInt(applicationID, 10))
		return nil, accessDenied("You do not have access to this application")
	}
	if app.Status != domain.StatusPending {
		return app, nil
	}

	now := uc.now()
	promoted, err := uc.applicationRepo.PromoteViewed(ctx, []int64{app.ID}, now)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if len(promoted) == 0 {
		current, err := uc.applicationRepo.GetByID(ctx, app.ID)
		if err != nil {
			return nil, storageError(err, "Application not found")
		}
		return current, nil
	}
	app.Status = domain.StatusViewed
	app.ReviewedAt = &now
	return app, nil
}

// Decide accepts or rejects an application. Accepting creates the match in the same transaction.
func (uc *applicationUsecase) Decide(ctx context.Context, companyID string, applicationID int64, decision domain.Decision) (*domain.DecisionResult, error) {
	qctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	var (
		result  *domain.DecisionResult
		created bool
	)
	err := uc.txManager.WithinTx(qctx, func(txCtx context.Context) error {
		// 1. Lock the application so concurrent decisions serialize here
		app, err := uc.applicationRepo.GetByIDForUpdate(txCtx, applicationID)
		if err != nil {
			return storageError(err, "Application not found")
		}

		// 2. Only the job owner may decide
		if app.CompanyUserID != companyID {
			uc.audit.LogOwnershipViolation(txCtx, companyID, "application:"+strconv.FormatInt(applicationID, 10))
			return accessDenied("You do not have access to this application")
		}

		// 3. Enforce the transition table
		target := decision.Target()
		if !app.Status.CanTransitionTo(target) {
			return invalidTransition(app.Status)
		}

		now := uc.now()
		if err := uc.applicationRepo.UpdateStatus(txCtx, app.ID, target, now); err != nil {
			return apperror.FromStorage(err)
		}
		app.Status = target
		app.ReviewedAt = &now
		result = &domain.DecisionResult{Application: app}

		// 4. Accept implies match, committed together
		if target == domain.StatusAccepted {
			m, isNew, err := uc.matchUC.CreateMatchIfAccepted(txCtx, app)
			if err != nil {
				return err
			}
			result.Match = m
			result.IsMatch = true
			created = isNew
		}
		return nil
	})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	// Side effects only after commit, and only for a match this call created.
	if created {
		uc.matchUC.Announce(ctx, result.Match)
	}
	return result, nil
}

// SwipeApplicant rejects on LEFT and accepts on RIGHT
func (uc *applicationUsecase) SwipeApplicant(ctx context.Context, companyID string, applicationID int64, direction domain.SwipeDirection) (*domain.DecisionResult, error) {
	return uc.Decide(ctx, companyID, applicationID, direction.Decision())
}

func (uc *applicationUsecase) validateJobOwnership(ctx context.Context, companyID string, jobID int64) error {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return storageError(err, "Job not found")
	}
	if job.CompanyUserID != companyID {
		uc.audit.LogOwnershipViolation(ctx, companyID, "job:"+strconv.FormatInt(jobID, 10))
		return accessDenied("You do not own this job")
	}
	return nil
}
