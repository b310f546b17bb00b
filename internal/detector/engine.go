// Package detector orchestrates one detection cycle: poll the sources,
// reconcile what they found, persist tracking state, and report the active
// release set.
package detector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/clock"
	"github.com/XXcipherX/tiny11-automated/internal/metrics"
	"github.com/XXcipherX/tiny11-automated/internal/publisher"
	"github.com/XXcipherX/tiny11-automated/internal/release"
	"github.com/XXcipherX/tiny11-automated/internal/source"
	"github.com/XXcipherX/tiny11-automated/internal/track"
)

// DefaultCooldown is the global gate between detection cycles.
const DefaultCooldown = time.Hour

// Config controls the engine.
type Config struct {
	// Cooldown below which an unforced cycle is skipped entirely.
	Cooldown time.Duration
}

// Result reports one detection cycle.
type Result struct {
	// NewReleases is the active, version-deduplicated set found this cycle.
	NewReleases []release.Release
	// Skipped is true when the cooldown gate short-circuited the cycle.
	Skipped bool
	// CheckCount is the persisted cycle counter after this cycle.
	CheckCount int
}

// Engine runs detection cycles.
type Engine struct {
	cfg     Config
	sources []source.Source
	store   track.Store
	cmp     *release.BuildComparator
	clk     clock.Clock
	pub     publisher.Publisher
	log     *zap.Logger
}

// New builds an Engine. pub may be nil when notifications are disabled.
func New(
	cfg Config,
	sources []source.Source,
	store track.Store,
	cmp *release.BuildComparator,
	clk clock.Clock,
	pub publisher.Publisher,
	log *zap.Logger,
) *Engine {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		sources: sources,
		store:   store,
		cmp:     cmp,
		clk:     clk,
		pub:     pub,
		log:     log,
	}
}

// Detect runs one detection cycle. Source failures are isolated: a cycle
// always completes and persists state even when every source fails, in which
// case it reports zero new releases.
func (e *Engine) Detect(ctx context.Context, force bool) (Result, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		// An unreadable store starts the cycle from the empty default.
		e.log.Warn("Failed to load tracking state, starting fresh", zap.Error(err))
		state = track.NewState()
	}
	if state.Builds == nil {
		state.Builds = track.NewState().Builds
	}

	now := e.clk.Now()
	if !force && state.LastCheck != nil && now.Sub(*state.LastCheck) < e.cfg.Cooldown {
		e.log.Info("Skipping cycle, checked recently",
			zap.Time("last_check", *state.LastCheck),
			zap.Duration("cooldown", e.cfg.Cooldown))
		metrics.IncCycle(metrics.OutcomeSkipped)
		return Result{Skipped: true, CheckCount: state.CheckCount}, nil
	}

	var candidates []release.Release
	for _, src := range e.sources {
		found, err := src.Check(ctx)
		if err != nil {
			e.log.Error("Source check failed",
				zap.String("source", src.Name()), zap.Error(err))
			metrics.IncSourceFailure(src.Name())
			continue
		}
		e.log.Info("Source check complete",
			zap.String("source", src.Name()), zap.Int("candidates", len(found)))
		metrics.AddReleasesDetected(src.Name(), len(found))
		candidates = append(candidates, found...)
	}

	deduped := release.DedupeByID(candidates)

	// Drop build ids already seen in a previous cycle so they are never
	// re-emitted as new.
	fresh := deduped[:0:0]
	for _, r := range deduped {
		if state.Known(r.BuildID) {
			continue
		}
		fresh = append(fresh, r)
	}

	active := release.DedupeByVersion(fresh, e.cmp)

	for _, r := range fresh {
		state.Builds[r.BuildID] = r
	}
	state.LastCheck = &now
	state.CheckCount++

	if err := e.store.Save(ctx, state); err != nil {
		return Result{}, fmt.Errorf("save tracking state: %w", err)
	}

	e.notify(ctx, active)
	metrics.IncCycle(metrics.OutcomeCompleted)

	e.log.Info("Detection cycle complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("fresh", len(fresh)),
		zap.Int("active", len(active)),
		zap.Int("check_count", state.CheckCount))
	return Result{NewReleases: active, CheckCount: state.CheckCount}, nil
}

func (e *Engine) notify(ctx context.Context, active []release.Release) {
	if e.pub == nil {
		return
	}
	for _, r := range active {
		if _, err := e.pub.Publish(ctx, publisher.TopicReleases, r); err != nil {
			e.log.Warn("Failed to publish release event",
				zap.String("build_id", r.BuildID), zap.Error(err))
		}
	}
}
