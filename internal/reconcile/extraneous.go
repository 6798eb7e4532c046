package reconcile

import (
	"context"
	"sort"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/notify"
	"github.com/frag-eval/frag-poll/internal/store"
	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
	"github.com/frag-eval/frag-poll/pkg/metrics"
	"github.com/frag-eval/frag-poll/pkg/passid"
	"github.com/thoas/go-funk"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// handleExtraneous reports the not yet ignored unmatched objects of every
// author and confirms them at Ignored. A batch whose notification fails stays
// unconfirmed so that it is reported again by the next pass.
func (d *Driver) handleExtraneous(ctx context.Context, logger *zap.SugaredLogger, spec *assignment.Spec, unmatched map[string][]submission.RemoteObject, byLogin map[string]model.Person) error {
	tracker := d.store.Processed(d.poller)

	authors := funk.Keys(unmatched).([]string)
	sort.Strings(authors)

	var errs error
	for _, author := range authors {
		var fresh []submission.RemoteObject
		for _, obj := range unmatched[author] {
			done, err := tracker.IsProcessed(ctx, obj, submission.Ignored)
			if err != nil {
				return multierr.Append(errs, err)
			}
			if !done {
				fresh = append(fresh, obj)
			}
		}
		if len(fresh) == 0 {
			continue
		}

		locations := funk.Map(fresh, func(obj submission.RemoteObject) string { return obj.Location() }).([]string)
		logger.Warnw("extraneous files", "author", author, "files", locations)

		if err := d.notify(ctx, spec, author, byLogin, locations); err != nil {
			logger.Errorw("failed to notify about extraneous files, leaving them unconfirmed", "author", author, "error", err)
			metrics.IncreaseNotificationsMetric(d.poller, metrics.OutcomeFailure)
			errs = multierr.Append(errs, err)
			continue
		}

		txCtx, err := d.store.NewTransactionContext(ctx)
		if err != nil {
			return multierr.Append(errs, err)
		}
		for _, obj := range fresh {
			if err = tracker.Confirm(txCtx, obj, submission.Ignored); err != nil {
				break
			}
		}
		if err := store.Finish(txCtx, !d.dryRun, err); err != nil {
			return multierr.Append(errs, err)
		}
		if !d.dryRun {
			metrics.IncreaseConfirmedMetric(d.poller, submission.Ignored.String(), len(fresh))
		}
	}
	return errs
}

func (d *Driver) notify(ctx context.Context, spec *assignment.Spec, author string, byLogin map[string]model.Person, locations []string) error {
	if d.notifier == nil {
		return nil
	}
	if d.dryRun {
		passid.Logger(ctx, "reconcile").Infow("dry run, not sending notification", "author", author)
		metrics.IncreaseNotificationsMetric(d.poller, metrics.OutcomeSkipped)
		return nil
	}

	name := author
	if p, ok := byLogin[author]; ok && p.Name != "" {
		name = p.Name
	}
	err := d.notifier.Notify(ctx, notify.Extraneous{
		Assignment: spec.Name,
		Login:      author,
		Name:       name,
		Locations:  locations,
	})
	if err == nil {
		metrics.IncreaseNotificationsMetric(d.poller, metrics.OutcomeSuccess)
	}
	return err
}
