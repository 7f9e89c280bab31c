package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

// capturingMatcher records the executed SQL so tests can assert on the
// statement shape, matching expectations by substring.
type capturingMatcher struct {
	last *string
}

func (m capturingMatcher) Match(expectedSQL, actualSQL string) error {
	*m.last = actualSQL
	if !strings.Contains(actualSQL, expectedSQL) {
		return errors.New("query does not contain " + expectedSQL)
	}
	return nil
}

func warmLeadColumns() []string {
	return []string{
		"id", "lead_id", "email", "phone", "company", "warmth_score",
		"status", "signals", "visited_pages", "source_channel",
		"detected_at", "created_at", "updated_at",
	}
}

func TestUpsertWarmLeadKeepsDetectedAt(t *testing.T) {
	var executed string
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(capturingMatcher{last: &executed}))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	leadID := uuid.New()
	detectedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	signals := []string{"visited_pricing"}
	pages := []string{"/pricing"}

	mock.ExpectQuery("INSERT INTO warm_leads").
		WithArgs(leadID, "jane@acme.com", "", "Acme", 72, "detected", signals, pages, "web").
		WillReturnRows(pgxmock.NewRows(warmLeadColumns()).AddRow(
			uuid.New(), leadID, "jane@acme.com", "", "Acme", 72,
			"detected", signals, pages, "web",
			detectedAt, detectedAt, now,
		))

	repo := New(mock)
	out, err := repo.UpsertWarmLead(context.Background(), WarmLead{
		LeadID:        leadID,
		Email:         "jane@acme.com",
		Company:       "Acme",
		WarmthScore:   72,
		Status:        "detected",
		Signals:       signals,
		VisitedPages:  pages,
		SourceChannel: "web",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !out.DetectedAt.Equal(detectedAt) {
		t.Fatalf("detected_at = %v, want stored %v", out.DetectedAt, detectedAt)
	}

	// Re-detection must never move the detection timestamp.
	_, after, found := strings.Cut(executed, "DO UPDATE SET")
	if !found {
		t.Fatalf("upsert is missing a conflict clause:\n%s", executed)
	}
	updateClause, _, _ := strings.Cut(after, "RETURNING")
	if strings.Contains(updateClause, "detected_at") {
		t.Fatalf("conflict clause rewrites detected_at:\n%s", updateClause)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetWarmLeadByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM warm_leads").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	if _, err := New(mock).GetWarmLeadByID(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateWarmLeadStatusNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE warm_leads").
		WithArgs(id, "qualified").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := New(mock).UpdateWarmLeadStatus(context.Background(), id, "qualified"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
