package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/database"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT id, company_user_id, title, is_active, created_at FROM jobs WHERE id = $1`
	var job domain.Job
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&job.ID, &job.CompanyUserID, &job.Title, &job.IsActive, &job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}
