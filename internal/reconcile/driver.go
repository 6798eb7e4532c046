package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/store"
	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
	"github.com/frag-eval/frag-poll/pkg/passid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Option func(d *Driver)

func WithNotifier(n Notifier) Option {
	return func(d *Driver) {
		d.notifier = n
	}
}

// WithDryRun rolls every transaction back instead of committing it and
// suppresses notifications.
func WithDryRun(dryRun bool) Option {
	return func(d *Driver) {
		d.dryRun = dryRun
	}
}

func WithEvalReq(evalReq store.EvalReq) Option {
	return func(d *Driver) {
		d.evalReq = evalReq
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		d.now = now
	}
}

// Driver runs one reconciliation pass over the configured assignments of a
// poller.
type Driver struct {
	store    store.Store
	source   Source
	poller   string
	notifier Notifier
	dryRun   bool
	evalReq  store.EvalReq
	now      func() time.Time
}

func NewDriver(s store.Store, poller string, source Source, opts ...Option) *Driver {
	d := &Driver{
		store:   s,
		source:  source,
		poller:  poller,
		evalReq: store.EvalReqTeacherInactiveOnly,
		now:     time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Run processes every enabled assignment once. A failing assignment does not
// stop the others; all failures are returned together.
func (d *Driver) Run(ctx context.Context, specs []*assignment.Spec) error {
	ctx, _ = passid.Start(ctx)
	logger := passid.Logger(ctx, "reconcile").With("poller", d.poller)
	logger.Debugw("starting pass", "assignments", len(specs), "dry_run", d.dryRun)

	people, err := d.store.Grading().People(ctx)
	if err != nil {
		return fmt.Errorf("failed to load people: %w", err)
	}
	byLogin := make(map[string]model.Person, len(people))
	for _, p := range people {
		byLogin[p.Login] = p
	}

	var errs error
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if !spec.IsEnabled(d.now()) {
			logger.Debugw("assignment disabled", "assignment", spec.Name)
			continue
		}
		if err := d.runAssignment(ctx, logger.With("assignment", spec.Name), spec, people, byLogin); err != nil {
			logger.Errorw("assignment failed", "assignment", spec.Name, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("assignment %s: %w", spec.Name, err))
		}
	}
	return errs
}

func (d *Driver) runAssignment(ctx context.Context, logger *zap.SugaredLogger, spec *assignment.Spec, people []model.Person, byLogin map[string]model.Person) error {
	resolved, err := d.resolve(ctx, spec)
	if err != nil {
		return err
	}
	if resolved == nil {
		logger.Warn("assignment not found in the grading database, skipping")
		return nil
	}
	if err := resolved.Validate(); err != nil {
		logger.Warnw("misconfigured assignment, skipping", "error", err)
		return nil
	}
	logger.Debugw("polling", "spec", resolved.String())

	matcher := resolved.Matcher()
	agg := submission.NewAggregator(resolved.Name, d.store.Processed(d.poller).IsProcessed)

	locations, err := d.source.Locations(ctx, resolved, people)
	if err != nil {
		return err
	}
	for _, loc := range locations {
		objects, err := d.source.List(ctx, resolved, loc)
		if errors.Is(err, submission.ErrNotFound) {
			logger.Warnw("source location not found, skipping", "location", loc.Path, "error", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", loc.Path, err)
		}

		for _, obj := range objects {
			slot, ok := matcher.CanonicalSlot(obj.DisplayName())
			if !ok {
				agg.AddUnmatched(obj)
				continue
			}
			if err := agg.Add(ctx, obj.Author(), slot, obj); err != nil {
				return err
			}
		}
	}

	sink := newSink(d.store, d.source, d.poller, d.dryRun, d.evalReq)
	for _, sub := range agg.Submissions() {
		if !sub.IsTodo(resolved.Multifile, resolved.FileNames) {
			continue
		}
		author, ok := byLogin[sub.Author]
		if !ok {
			logger.Warnw("submission of unknown author, skipping", "author", sub.Author)
			continue
		}
		if err := sink.Ingest(ctx, resolved, author, sub); err != nil {
			return fmt.Errorf("failed to ingest submission of %s: %w", sub.Author, err)
		}
	}

	return d.handleExtraneous(ctx, logger, resolved, agg.Unmatched(), byLogin)
}

// resolve returns a copy of spec with its grading store identity and its
// expected file names, or nil when the assignment is unknown.
func (d *Driver) resolve(ctx context.Context, spec *assignment.Spec) (*assignment.Spec, error) {
	id, err := d.store.Grading().AssignmentID(ctx, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignment: %w", err)
	}
	if id == nil {
		return nil, nil
	}

	resolved := *spec
	resolved.ID = id
	if len(resolved.FileNames) == 0 {
		names, err := d.store.Grading().AssignmentFiles(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("failed to read expected files: %w", err)
		}
		resolved.FileNames = names
	}
	return &resolved, nil
}
