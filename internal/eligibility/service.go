package eligibility

import (
	"context"
	"fmt"
	"time"

	"clinic_sync_backend/internal/policy"
	"clinic_sync_backend/platform/apperr"
	"clinic_sync_backend/platform/logger"

	"github.com/google/uuid"
)

// Store loads matching inputs from the database.
type Store interface {
	LinkStore
	EvaluatorProfiles(ctx context.Context) ([]EvaluatorProfile, error)
	InsuranceCodes(ctx context.Context) (map[InsuranceCode]struct{}, error)
	Clients(ctx context.Context) ([]Client, error)
}

// Options selects which clients are force-recomputed. A forced client's
// links are dropped and rewritten; everyone else gets the minimal delta.
type Options struct {
	ForceAll       bool
	ForceClientIDs []int64
}

// Stats summarizes one eligibility run.
type Stats struct {
	Clients      int
	Evaluators   int
	LinksAdded   int
	LinksRemoved int
}

// Service recomputes eligibility for the whole roster and reconciles the
// persisted links against the result.
type Service struct {
	store Store
	pol   policy.Policy
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, pol policy.Policy, log *logger.Logger) *Service {
	return &Service{store: store, pol: pol, log: log, now: time.Now}
}

// Run executes one eligibility batch. Alias validation happens before any
// link is touched: an alias pointing at a code no evaluator accepts is a
// configuration mistake that would silently strip coverage, so it stops the
// run instead.
func (s *Service) Run(ctx context.Context, opts Options) (Stats, error) {
	log := s.log.WithRun(uuid.NewString())

	aliases, err := s.resolveAliases(ctx)
	if err != nil {
		return Stats{}, err
	}

	profiles, err := s.store.EvaluatorProfiles(ctx)
	if err != nil {
		return Stats{}, err
	}
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Clients: len(clients), Evaluators: len(profiles)}
	if len(profiles) == 0 {
		log.Warn("no evaluator profiles loaded, leaving links untouched")
		return stats, nil
	}

	differ, err := NewDiffer(ctx, s.store, log)
	if err != nil {
		return stats, err
	}

	matcher := NewMatcher(aliases, s.now())
	forced := make(map[int64]struct{}, len(opts.ForceClientIDs))
	for _, id := range opts.ForceClientIDs {
		forced[id] = struct{}{}
	}

	for i, client := range clients {
		if (i+1)%100 == 0 {
			log.Info("eligibility progress", "processed", i+1, "total", len(clients))
		}

		desired := matcher.EligibleSet(client, profiles)

		_, force := forced[client.ID]
		if force || opts.ForceAll {
			added, err := differ.ForceApply(ctx, client.ID, desired)
			if err != nil {
				log.DatabaseError("force rewrite client links", err)
				continue
			}
			stats.LinksAdded += added
			continue
		}

		added, removed, err := differ.Apply(ctx, client.ID, desired)
		if err != nil {
			log.DatabaseError("reconcile client links", err)
			continue
		}
		stats.LinksAdded += added
		stats.LinksRemoved += removed
	}

	log.Info("eligibility sync complete",
		"clients", stats.Clients,
		"evaluators", stats.Evaluators,
		"links_added", stats.LinksAdded,
		"links_removed", stats.LinksRemoved,
	)
	return stats, nil
}

// resolveAliases checks every policy alias against the codes the roster
// actually accepts and returns the typed alias map for the matcher.
func (s *Service) resolveAliases(ctx context.Context) (map[string]InsuranceCode, error) {
	known, err := s.store.InsuranceCodes(ctx)
	if err != nil {
		return nil, err
	}

	aliases := make(map[string]InsuranceCode, len(s.pol.InsuranceAliases))
	for raw, code := range s.pol.InsuranceAliases {
		canonical := InsuranceCode(code)
		if _, ok := known[canonical]; !ok {
			return nil, apperr.Validation(fmt.Sprintf("insurance alias %q targets unknown code %q", raw, code))
		}
		aliases[raw] = canonical
	}
	return aliases, nil
}
