// Package reconcile re-synchronizes every known owner's balance row.
package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"vestora/internal/logger"
	"vestora/internal/models"
	"vestora/internal/store"
)

const maxConcurrentOwners = 4

// OwnerSource lists the owners that hold assets or a balance row.
type OwnerSource interface {
	ListAssetOwnerIDs(ctx context.Context) ([]string, error)
	ListBalanceOwnerIDs(ctx context.Context) ([]string, error)
}

// Synchronizer recomputes one owner's balance row.
type Synchronizer interface {
	Synchronize(ctx context.Context, ownerID string) (*models.BalanceRecord, error)
}

// Failure is an owner whose synchronization failed.
type Failure struct {
	OwnerID string `json:"owner_id"`
	Error   string `json:"error"`
}

// RunResult contains the outcome of a reconciliation run.
type RunResult struct {
	Owners       int           `json:"owners"`
	Synchronized int           `json:"synchronized"`
	Failures     []Failure     `json:"failures"`
	Duration     time.Duration `json:"-"`
}

// Reconciler synchronizes all owners, one run at a time.
type Reconciler struct {
	owners OwnerSource
	sync   Synchronizer

	mu sync.Mutex
}

// New creates a Reconciler.
func New(owners OwnerSource, sync Synchronizer) *Reconciler {
	return &Reconciler{owners: owners, sync: sync}
}

// RunOnce enumerates owners and synchronizes each of them. Per-owner
// failures are collected in the result; only a failed enumeration is
// returned as an error.
func (r *Reconciler) RunOnce(ctx context.Context) (*RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.Named("reconcile")
	start := time.Now()

	assetOwners, err := r.owners.ListAssetOwnerIDs(ctx)
	if err != nil {
		return nil, err
	}
	balanceOwners, err := r.owners.ListBalanceOwnerIDs(ctx)
	if err != nil {
		return nil, err
	}
	ids := store.Dedupe(append(assetOwners, balanceOwners...))

	result := &RunResult{Owners: len(ids), Failures: []Failure{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOwners)
	for _, id := range ids {
		g.Go(func() error {
			_, err := r.sync.Synchronize(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, Failure{OwnerID: id, Error: err.Error()})
				return nil
			}
			result.Synchronized++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].OwnerID < result.Failures[j].OwnerID
	})
	result.Duration = time.Since(start)

	log.Infow("reconciliation run completed",
		"owners", result.Owners,
		"synchronized", result.Synchronized,
		"failures", len(result.Failures),
		"duration", result.Duration.String(),
	)
	for _, f := range result.Failures {
		log.Warnw("owner synchronization failed", "owner_id", f.OwnerID, "error", f.Error)
	}
	return result, nil
}

// Schedule registers RunOnce on a cron scheduler. An empty spec disables
// scheduling and returns a nil scheduler.
func (r *Reconciler) Schedule(spec string) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			logger.Named("reconcile").Errorw("reconciliation run failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
