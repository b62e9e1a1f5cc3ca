package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/database"
)

const matchSelect = `
	SELECT
		m.id, m.application_id, m.matched_at, m.contacted,
		j.id, j.title,
		a.seeker_user_id, COALESCE(su.name, ''),
		j.company_user_id, COALESCE(NULLIF(cp.company_name, ''), cu.name, '')
	FROM matches m
	JOIN applications a ON a.id = m.application_id
	JOIN jobs j ON j.id = a.job_id
	LEFT JOIN users su ON su.id = a.seeker_user_id
	LEFT JOIN users cu ON cu.id = j.company_user_id
	LEFT JOIN company_profiles cp ON cp.user_id = j.company_user_id`

type matchRepo struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) domain.MatchRepository {
	return &matchRepo{db: db}
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(
		&m.ID, &m.ApplicationID, &m.MatchedAt, &m.Contacted,
		&m.JobID, &m.JobTitle,
		&m.SeekerUserID, &m.SeekerName,
		&m.CompanyUserID, &m.CompanyName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CreateIfAbsent relies on the unique application_id: the loser of a race inserts nothing
// and reads the winner's row back.
func (r *matchRepo) CreateIfAbsent(ctx context.Context, applicationID int64, matchedAt time.Time) (*domain.Match, bool, error) {
	conn := database.Conn(ctx, r.db)

	var id int64
	err := conn.QueryRow(ctx, `
		INSERT INTO matches (application_id, matched_at)
		VALUES ($1, $2)
		ON CONFLICT (application_id) DO NOTHING
		RETURNING id`,
		applicationID, matchedAt,
	).Scan(&id)

	created := true
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
	} else if err != nil {
		return nil, false, err
	}

	m, err := scanMatch(conn.QueryRow(ctx, matchSelect+` WHERE m.application_id = $1`, applicationID))
	if err != nil {
		return nil, false, err
	}
	return m, created, nil
}

func (r *matchRepo) GetByID(ctx context.Context, id int64) (*domain.Match, error) {
	return scanMatch(database.Conn(ctx, r.db).QueryRow(ctx, matchSelect+` WHERE m.id = $1`, id))
}

func (r *matchRepo) ListBySeeker(ctx context.Context, seekerID string) ([]domain.Match, error) {
	return r.list(ctx, matchSelect+` WHERE a.seeker_user_id = $1 ORDER BY m.matched_at DESC, m.id DESC`, seekerID)
}

// ListByCompany returns matches on any job the company owns
func (r *matchRepo) ListByCompany(ctx context.Context, companyID string) ([]domain.Match, error) {
	return r.list(ctx, matchSelect+` WHERE j.company_user_id = $1 ORDER BY m.matched_at DESC, m.id DESC`, companyID)
}

func (r *matchRepo) list(ctx context.Context, query string, args ...any) ([]domain.Match, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}
