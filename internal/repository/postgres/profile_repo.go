package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/database"
)

// seekerProfileRepo resolves a seeker's display card: name plus current title.
type seekerProfileRepo struct {
	db *pgxpool.Pool
}

func NewSeekerProfileLookup(db *pgxpool.Pool) domain.ProfileLookup {
	return &seekerProfileRepo{db: db}
}

func (r *seekerProfileRepo) Lookup(ctx context.Context, userID string) (*domain.Participant, error) {
	query := `
		SELECT u.id, u.name, COALESCE(sp.title, '')
		FROM users u
		LEFT JOIN seeker_profiles sp ON sp.user_id = u.id
		WHERE u.id = $1`

	p := domain.Participant{Role: domain.RoleSeeker}
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.Headline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// companyProfileRepo prefers the registered company name over the account name.
type companyProfileRepo struct {
	db *pgxpool.Pool
}

func NewCompanyProfileLookup(db *pgxpool.Pool) domain.ProfileLookup {
	return &companyProfileRepo{db: db}
}

func (r *companyProfileRepo) Lookup(ctx context.Context, userID string) (*domain.Participant, error) {
	query := `
		SELECT u.id, COALESCE(NULLIF(cp.company_name, ''), u.name), COALESCE(cp.industry, '')
		FROM users u
		LEFT JOIN company_profiles cp ON cp.user_id = u.id
		WHERE u.id = $1`

	p := domain.Participant{Role: domain.RoleCompany}
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.Headline)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
