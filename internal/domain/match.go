package domain

import (
	"context"
	"time"
)

// Match records mutual interest: created once, when an application is accepted.
type Match struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	MatchedAt     time.Time `json:"matched_at"`
	Contacted     bool      `json:"contacted"`

	// Joined data
	JobID         int64  `json:"job_id"`
	JobTitle      string `json:"job_title"`
	SeekerUserID  string `json:"seeker_user_id"`
	SeekerName    string `json:"seeker_name"`
	CompanyUserID string `json:"company_user_id"`
	CompanyName   string `json:"company_name"`
}

// HasParticipant reports whether userID is the seeker or the company of the match.
func (m *Match) HasParticipant(userID string) bool {
	return userID != "" && (m.SeekerUserID == userID || m.CompanyUserID == userID)
}

// OtherParty returns the participant opposite userID.
func (m *Match) OtherParty(userID string) string {
	if m.SeekerUserID == userID {
		return m.CompanyUserID
	}
	return m.SeekerUserID
}

type MatchRepository interface {
	// CreateIfAbsent inserts a match for the application unless one exists,
	// then returns the stored row. created is false when it already existed.
	CreateIfAbsent(ctx context.Context, applicationID int64, matchedAt time.Time) (m *Match, created bool, err error)
	GetByID(ctx context.Context, id int64) (*Match, error)
	ListBySeeker(ctx context.Context, seekerID string) ([]Match, error)
	ListByCompany(ctx context.Context, companyID string) ([]Match, error)
}

type MatchUsecase interface {
	// CreateMatchIfAccepted must run inside the transaction that accepted the application.
	CreateMatchIfAccepted(ctx context.Context, app *Application) (m *Match, created bool, err error)
	// Announce notifies both parties and opens their chat room. Errors are logged only.
	Announce(ctx context.Context, m *Match)
	ListMatches(ctx context.Context, userID, role string) ([]Match, error)
	GetMatch(ctx context.Context, userID string, matchID int64) (*Match, error)
	ExportMatches(ctx context.Context, companyID string) (data []byte, filename string, err error)
}
