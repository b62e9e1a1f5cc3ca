package domain

import (
	"context"
	"time"
)

// Job is the slice of a job post this service needs: its owner and whether it takes applications.
type Job struct {
	ID            int64     `json:"id"`
	CompanyUserID string    `json:"company_user_id"`
	Title         string    `json:"title"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type JobRepository interface {
	GetByID(ctx context.Context, id int64) (*Job, error)
}
