// Command score-backfill recomputes warmth scores for all warm-lead
// profiles from their latest stored behavior snapshots. Run it after
// changing scoring weights so stored scores match the current model.
package main

import (
	"context"
	"sync/atomic"

	"leadintel_backend/internal/events"
	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/internal/leads/service"
	"leadintel_backend/internal/leads/threat"
	"leadintel_backend/internal/leads/warmth"
	"leadintel_backend/platform/config"
	"leadintel_backend/platform/db"
	"leadintel_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting warmth score backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	scorer, err := warmth.NewScorer(warmth.DefaultWeights())
	if err != nil {
		log.Error("invalid scoring weights", "error", err)
		panic("invalid scoring weights: " + err.Error())
	}
	calculator := threat.NewCalculator(threat.NewKeywordAnalyzer(), log)

	// No scheduler or competitors; the backfill only touches warmth scores.
	svc := service.New(repo, scorer, calculator, nil, nil, events.NewInMemoryBus(log), log)

	ids, err := svc.ListWarmLeadIDs(ctx)
	if err != nil {
		log.Error("failed to list warm leads", "error", err)
		panic("failed to list warm leads: " + err.Error())
	}
	log.Info("warm leads to rescore", "count", len(ids))

	var rescored, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := svc.RescoreWarmLead(gctx, id); err != nil {
				log.Error("rescore failed", "warmLeadId", id, "error", err)
				failed.Add(1)
				return nil
			}
			rescored.Add(1)
			return nil
		})
	}

	_ = g.Wait()
	log.Info("warmth score backfill complete", "rescored", rescored.Load(), "failed", failed.Load())
}
