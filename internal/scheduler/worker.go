package scheduler

import (
	"context"
	"fmt"

	"leadintel_backend/internal/email"
	"leadintel_backend/internal/events"
	"leadintel_backend/internal/leads/domain"
	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/internal/leads/seizure"
	"leadintel_backend/platform/config"
	"leadintel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	sender email.Sender
	bus    events.Bus
	log    *logger.Logger
}

// NewWorker builds the asynq worker that dispatches due seizure actions.
// sender may be nil; email actions are then marked sent without delivery.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender email.Sender, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		sender: sender,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskSeizureActionDue, w.handleSeizureActionDue)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleSeizureActionDue delivers one due action. Actions that are no longer
// pending were cancelled or already handled and are skipped silently.
func (w *Worker) handleSeizureActionDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSeizureActionDuePayload(task)
	if err != nil {
		return err
	}

	actionID, err := uuid.Parse(payload.ActionID)
	if err != nil {
		return err
	}

	action, err := w.repo.GetSeizureActionByID(ctx, actionID)
	if err != nil {
		return err
	}

	if action.Status != domain.ActionPending {
		return nil
	}

	warmLead, err := w.repo.GetWarmLeadByID(ctx, action.WarmLeadID)
	if err != nil {
		return err
	}
	if domain.IsTerminalWarmLeadStatus(warmLead.Status) {
		// Terminal leads get no outreach. Covers actions still pending when
		// the cancel sweep on conversion or unsubscribe raced delivery.
		return w.repo.UpdateSeizureActionStatus(ctx, actionID, domain.ActionCancelled)
	}

	if action.Type == seizure.ActionEmail && w.sender != nil {
		if warmLead.Email == "" {
			w.log.Warn("email action without recipient", "actionId", actionID)
			return w.repo.UpdateSeizureActionStatus(ctx, actionID, domain.ActionFailed)
		}
		if err := w.sender.SendCampaignEmail(ctx, warmLead.Email, action.Subject, action.Content); err != nil {
			w.log.Error("campaign email delivery failed", "error", err, "actionId", actionID)
			if markErr := w.repo.UpdateSeizureActionStatus(ctx, actionID, domain.ActionFailed); markErr != nil {
				return markErr
			}
			return err
		}
	}

	if err := w.repo.UpdateSeizureActionStatus(ctx, actionID, domain.ActionSent); err != nil {
		return err
	}

	if w.bus != nil {
		w.bus.Publish(ctx, events.SeizureActionDispatched{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     warmLead.LeadID,
			ActionID:   actionID,
			ActionType: action.Type,
			Channel:    action.Type,
		})
	}

	w.log.Info("seizure action dispatched",
		"actionId", actionID, "type", action.Type, "triggerDay", action.TriggerDay)
	return nil
}
