package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pashagolub/pgxmock/v4"
)

func dueTask(t *testing.T, actionID uuid.UUID) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(SeizureActionDuePayload{ActionID: actionID.String()})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(TaskSeizureActionDue, data)
}

func actionColumns() []string {
	return []string{
		"id", "warm_lead_id", "campaign_id", "type", "trigger_day",
		"subject", "content", "status", "scheduled_for", "created_at", "updated_at",
	}
}

func warmLeadColumns() []string {
	return []string{
		"id", "lead_id", "email", "phone", "company", "warmth_score",
		"status", "signals", "visited_pages", "source_channel",
		"detected_at", "created_at", "updated_at",
	}
}

// A due action for a lead in any terminal status is cancelled, not sent.
// Conversion cancels pending actions, but an action already picked up by the
// queue can race that sweep.
func TestDueActionCancelledForTerminalLead(t *testing.T) {
	for _, status := range []string{"converted", "cold", "unsubscribed"} {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("mock pool: %v", err)
		}

		actionID := uuid.New()
		warmLeadID := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery("FROM seizure_actions").
			WithArgs(actionID).
			WillReturnRows(pgxmock.NewRows(actionColumns()).AddRow(
				actionID, warmLeadID, uuid.New(), "email", 1,
				"Quick question", "Hi there", "pending", now, now, now,
			))
		mock.ExpectQuery("FROM warm_leads").
			WithArgs(warmLeadID).
			WillReturnRows(pgxmock.NewRows(warmLeadColumns()).AddRow(
				warmLeadID, uuid.New(), "jane@acme.com", "", "Acme", 90,
				status, []string{"visited_pricing"}, []string{"/pricing"}, "web",
				now, now, now,
			))
		mock.ExpectExec("UPDATE seizure_actions").
			WithArgs(actionID, "cancelled").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		w := &Worker{repo: repository.New(mock), log: logger.New("test")}
		if err := w.handleSeizureActionDue(context.Background(), dueTask(t, actionID)); err != nil {
			t.Fatalf("status %s: handle: %v", status, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("status %s: expectations: %v", status, err)
		}
		mock.Close()
	}
}

// Actions already advanced past pending are skipped without touching the row.
func TestDueActionSkippedWhenNotPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	actionID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM seizure_actions").
		WithArgs(actionID).
		WillReturnRows(pgxmock.NewRows(actionColumns()).AddRow(
			actionID, uuid.New(), uuid.New(), "email", 1,
			"Quick question", "Hi there", "sent", now, now, now,
		))

	w := &Worker{repo: repository.New(mock), log: logger.New("test")}
	if err := w.handleSeizureActionDue(context.Background(), dueTask(t, actionID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
