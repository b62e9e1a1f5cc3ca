package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/database"
)

const applicationColumns = `
	a.id, a.seeker_user_id, a.job_id, a.status, a.applied_at, a.reviewed_at,
	j.company_user_id, j.title,
	COALESCE(su.name, ''),
	COALESCE(NULLIF(cp.company_name, ''), cu.name, '')`

const applicationFrom = `
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	LEFT JOIN users su ON su.id = a.seeker_user_id
	LEFT JOIN users cu ON cu.id = j.company_user_id
	LEFT JOIN company_profiles cp ON cp.user_id = j.company_user_id`

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.SeekerUserID, &app.JobID, &app.Status, &app.AppliedAt, &app.ReviewedAt,
		&app.CompanyUserID, &app.JobTitle, &app.SeekerName, &app.CompanyName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) Exists(ctx context.Context, seekerID string, jobID int64) (bool, error) {
	var exists bool
	err := database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE seeker_user_id = $1 AND job_id = $2)`,
		seekerID, jobID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new application. The unique key on (seeker_user_id, job_id) backs the duplicate check.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (seeker_user_id, job_id, status, applied_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if app.Status == "" {
		app.Status = domain.StatusPending
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		app.SeekerUserID, app.JobID, app.Status, app.AppliedAt,
	).Scan(&app.ID)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateApplication
	}
	return err
}

// GetByID retrieves an application with job and party names
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + applicationFrom + ` WHERE a.id = $1`
	return scanApplication(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *applicationRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + applicationFrom + ` WHERE a.id = $1 FOR UPDATE OF a`
	return scanApplication(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus, reviewedAt time.Time) error {
	tag, err := database.Conn(ctx, r.db).Exec(ctx,
		`UPDATE applications SET status = $2, reviewed_at = $3 WHERE id = $1`,
		id, status, reviewedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PromoteViewed flips the listed PENDING rows in one statement
func (r *applicationRepo) PromoteViewed(ctx context.Context, ids []int64, reviewedAt time.Time) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := database.Conn(ctx, r.db).Query(ctx, `
		UPDATE applications
		SET status = $2, reviewed_at = $3
		WHERE id = ANY($1::bigint[]) AND status = $4
		RETURNING id`,
		pq.Array(ids), domain.StatusViewed, reviewedAt, domain.StatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promoted []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		promoted = append(promoted, id)
	}
	return promoted, rows.Err()
}

func (r *applicationRepo) ListReviewable(ctx context.Context, jobID int64, limit, offset int) ([]domain.Application, int64, error) {
	return r.listPage(ctx,
		`a.job_id = $1 AND a.status IN ('PENDING', 'VIEWED')`,
		`a.applied_at ASC, a.id ASC`,
		jobID, limit, offset)
}

func (r *applicationRepo) ListBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]domain.Application, int64, error) {
	return r.listPage(ctx,
		`a.seeker_user_id = $1`,
		`a.applied_at DESC, a.id DESC`,
		seekerID, limit, offset)
}

// ListReviewedBySeeker backs the "who viewed my profile" list
func (r *applicationRepo) ListReviewedBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]domain.Application, int64, error) {
	return r.listPage(ctx,
		`a.seeker_user_id = $1 AND a.reviewed_at IS NOT NULL`,
		`a.reviewed_at DESC, a.id DESC`,
		seekerID, limit, offset)
}

// listPage runs a filtered listing plus its total count. where must use $1 for key.
func (r *applicationRepo) listPage(ctx context.Context, where, orderBy string, key any, limit, offset int) ([]domain.Application, int64, error) {
	conn := database.Conn(ctx, r.db)

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) `+applicationFrom+` WHERE `+where, key).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + applicationColumns + applicationFrom +
		` WHERE ` + where + ` ORDER BY ` + orderBy + ` LIMIT $2 OFFSET $3`
	rows, err := conn.Query(ctx, query, key, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		applications = append(applications, *app)
	}
	return applications, total, rows.Err()
}
