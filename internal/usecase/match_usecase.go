package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
	"go-jobswipe-backend/pkg/logger"
)

const matchTitle = "It's a match!"

type matchLister func(ctx context.Context, userID string) ([]domain.Match, error)

type matchUsecase struct {
	matchRepo domain.MatchRepository
	rooms     domain.RoomResolver
	notifier  domain.Notifier
	listers   map[string]matchLister
	timeout   time.Duration
	now       func() time.Time
}

func NewMatchUsecase(matchRepo domain.MatchRepository, rooms domain.RoomResolver, notifier domain.Notifier, timeout time.Duration) domain.MatchUsecase {
	return &matchUsecase{
		matchRepo: matchRepo,
		rooms:     rooms,
		notifier:  notifier,
		listers: map[string]matchLister{
			domain.RoleSeeker:  matchRepo.ListBySeeker,
			domain.RoleCompany: matchRepo.ListByCompany,
		},
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateMatchIfAccepted returns the match for an accepted application, creating it at most once.
func (uc *matchUsecase) CreateMatchIfAccepted(ctx context.Context, app *domain.Application) (*domain.Match, bool, error) {
	if app.Status != domain.StatusAccepted {
		return nil, false, invalidTransition(app.Status)
	}

	m, created, err := uc.matchRepo.CreateIfAbsent(ctx, app.ID, uc.now())
	if err != nil {
		return nil, false, apperror.FromStorage(err)
	}
	return m, created, nil
}

func (uc *matchUsecase) Announce(ctx context.Context, m *domain.Match) {
	if m == nil {
		return
	}
	uc.notifier.Notify(ctx, m.SeekerUserID, domain.NotificationMatch, matchTitle,
		fmt.Sprintf("%s is interested in you for %s", m.CompanyName, m.JobTitle), &m.ID)
	uc.notifier.Notify(ctx, m.CompanyUserID, domain.NotificationMatch, matchTitle,
		fmt.Sprintf("You matched with %s for %s", m.SeekerName, m.JobTitle), &m.ID)

	matchID := m.ID
	if _, err := uc.rooms.GetOrCreate(ctx, m.SeekerUserID, m.CompanyUserID, &matchID); err != nil {
		logger.Log.Warn("Failed to open chat room for match", "match_id", m.ID, "error", err)
	}
}

// ListMatches returns the caller's matches, newest first. Lookup depends on role.
func (uc *matchUsecase) ListMatches(ctx context.Context, userID, role string) ([]domain.Match, error) {
	list, ok := uc.listers[role]
	if !ok {
		return nil, apperror.Forbidden("Only seekers and companies have matches")
	}

	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	matches, err := list(ctx, userID)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	return matches, nil
}

func (uc *matchUsecase) GetMatch(ctx context.Context, userID string, matchID int64) (*domain.Match, error) {
	ctx, cancel := boundedContext(ctx, uc.timeout)
	defer cancel()

	m, err := uc.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, storageError(err, "Match not found")
	}
	if !m.HasParticipant(userID) {
		return nil, accessDenied("You are not part of this match")
	}
	return m, nil
}

// ExportMatches renders a company's matches as an Excel sheet
func (uc *matchUsecase) ExportMatches(ctx context.Context, companyID string) ([]byte, string, error) {
	matches, err := uc.ListMatches(ctx, companyID, domain.RoleCompany)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Matches"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"MATCH ID", "JOB", "CANDIDATE", "MATCHED AT", "CONTACTED"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// Style headers - Dark Blue background with White text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, m := range matches {
		contacted := "NO"
		if m.Contacted {
			contacted = "YES"
		}
		values := []any{m.ID, m.JobTitle, m.SeekerName, m.MatchedAt.Format(time.RFC3339), contacted}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("matches_%s.xlsx", uc.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
