package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frag-eval/frag-poll/internal/config"
	"github.com/frag-eval/frag-poll/pkg/metrics"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
)

// PassFunc runs one reconciliation pass with a freshly loaded configuration.
type PassFunc func(ctx context.Context, cfg *config.Poller) error

type Option func(p *Poller)

// WithOneshot stops the poller after the first pass.
func WithOneshot(oneshot bool) Option {
	return func(p *Poller) {
		p.oneshot = oneshot
	}
}

func WithLoader(load func(path string) (*config.Poller, error)) Option {
	return func(p *Poller) {
		p.load = load
	}
}

func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) {
		p.wait = wait
	}
}

// Poller re-reads its configuration and runs a pass, then sleeps for what is
// left of the configured interval.
type Poller struct {
	name       string
	configPath string
	pass       PassFunc
	oneshot    bool
	load       func(path string) (*config.Poller, error)
	wait       func(ctx context.Context, d time.Duration) error
	log        *zap.SugaredLogger
}

func New(name, configPath string, pass PassFunc, opts ...Option) *Poller {
	p := &Poller{
		name:       name,
		configPath: configPath,
		pass:       pass,
		load:       config.LoadPoller,
		wait:       jitterWait,
		log:        zap.S().Named("poller").With("poller", name),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run polls until ctx is cancelled. In oneshot mode the error of the single
// pass is returned. Configuration errors are always returned, except that a
// configuration broken while the loop is running is reported and the last
// good one is used instead.
func (p *Poller) Run(ctx context.Context) error {
	var last *config.Poller
	for {
		start := time.Now()

		cfg, err := p.load(p.configPath)
		switch {
		case err == nil:
			last = cfg
		case last == nil:
			return err
		default:
			p.log.Errorw("failed to reload configuration, keeping the previous one", "error", err)
		}

		err = p.pass(ctx, last)
		p.record(err)
		if errors.Is(err, config.ErrConfig) {
			return err
		}
		if p.oneshot {
			return err
		}
		if err != nil {
			p.log.Errorw("pass failed", "error", err)
		}

		left := last.Interval.Duration() - time.Since(start)
		p.log.Debugw("waiting for the next pass", "wait", left)
		if err := p.wait(ctx, left); err != nil {
			p.log.Info("poller stopped")
			return nil
		}
	}
}

func (p *Poller) record(err error) {
	if err != nil {
		metrics.IncreasePassesMetric(p.name, metrics.OutcomeFailure)
		return
	}
	metrics.IncreasePassesMetric(p.name, metrics.OutcomeSuccess)
}

// jitterWait sleeps for about d. It returns the context error when cancelled
// first.
func jitterWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	ticker := jitterbug.New(d, &jitterbug.Norm{Stdev: time.Second, Mean: 0})
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-ticker.C:
		return nil
	}
}
