// Package landscape builds the height-mapped torus off the simulation
// goroutine and reports when it is ready.
package landscape

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/logger"
	"github.com/Faultbox/torus-drive/pkg/heightfield"
	"github.com/Faultbox/torus-drive/pkg/surface"
)

// Build loads the height field described by cfg and builds the scaled torus.
// An empty HeightMap selects a flat field of FlatSize x FlatSize cells.
func Build(cfg config.LandscapeConfig) (*surface.Torus, error) {
	var (
		field *heightfield.Field
		err   error
	)
	if cfg.HeightMap != "" {
		field, err = heightfield.Load(cfg.HeightMap, cfg.HeightScale, cfg.Resolution)
	} else {
		field, err = heightfield.Flat(cfg.FlatSize, cfg.FlatSize)
	}
	if err != nil {
		return nil, fmt.Errorf("height field: %w", err)
	}

	torus, err := surface.Build(field, cfg.InnerRadius, cfg.OuterRadius)
	if err != nil {
		return nil, fmt.Errorf("torus: %w", err)
	}
	if cfg.Scale != 1 {
		torus.Scale(cfg.Scale, cfg.Scale, cfg.Scale)
	}
	return torus, nil
}

type result struct {
	torus *surface.Torus
	err   error
}

// Loader builds the landscape in a background goroutine. Poll hands the
// result to the owning goroutine without blocking; Ready and Err may be
// read from any goroutine.
type Loader struct {
	cfg  config.LandscapeConfig
	log  *zap.Logger
	done chan result

	started bool
	ready   atomic.Bool
	failed  atomic.Bool
	torus   *surface.Torus
	err     error
}

// NewLoader creates a loader for cfg. Nothing happens until Start.
func NewLoader(cfg config.LandscapeConfig) *Loader {
	return &Loader{
		cfg:  cfg,
		log:  logger.Named("landscape"),
		done: make(chan result, 1),
	}
}

// Start begins loading. Cancelling ctx abandons the load; calling Start
// more than once has no effect.
func (l *Loader) Start(ctx context.Context) {
	if l.started {
		return
	}
	l.started = true

	go func() {
		start := time.Now()
		if err := ctx.Err(); err != nil {
			l.done <- result{err: err}
			return
		}

		torus, err := Build(l.cfg)
		if err == nil && ctx.Err() != nil {
			torus, err = nil, ctx.Err()
		}
		if err == nil {
			w, h := torus.Size()
			lo, hi := torus.Field().MinMax()
			minB, maxB := torus.Bounds()
			l.log.Info("landscape built",
				zap.String("height_map", l.cfg.HeightMap),
				zap.Int("width", w),
				zap.Int("height", h),
				zap.Float64("min_height", lo),
				zap.Float64("max_height", hi),
				zap.Float64s("bounds_min", minB[:]),
				zap.Float64s("bounds_max", maxB[:]),
				zap.Duration("took", time.Since(start)))
		}
		l.done <- result{torus: torus, err: err}
	}()
}

// Poll collects a finished load if one is waiting and reports readiness.
// It never blocks. Call it from the goroutine that owns the simulation.
func (l *Loader) Poll() bool {
	if l.ready.Load() || l.failed.Load() {
		return l.ready.Load()
	}
	select {
	case r := <-l.done:
		l.accept(r)
	default:
	}
	return l.ready.Load()
}

// Wait blocks until the load finishes or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	if l.ready.Load() || l.failed.Load() {
		return l.Err()
	}
	select {
	case r := <-l.done:
		l.accept(r)
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) accept(r result) {
	if r.err != nil {
		l.err = r.err
		l.failed.Store(true)
		l.log.Error("landscape load failed", zap.Error(r.err))
		return
	}
	l.torus = r.torus
	l.ready.Store(true)
}

// Ready reports whether the landscape has been collected by Poll or Wait.
func (l *Loader) Ready() bool { return l.ready.Load() }

// Err returns the load error, if the load failed. err is written before
// failed is set, so the flag orders the read.
func (l *Loader) Err() error {
	if !l.failed.Load() {
		return nil
	}
	return l.err
}

// Surface returns the built torus. It panics if the landscape is not ready.
func (l *Loader) Surface() *surface.Torus {
	if !l.ready.Load() {
		panic("landscape: surface requested before ready")
	}
	return l.torus
}
