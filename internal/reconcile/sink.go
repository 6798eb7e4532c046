package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/store"
	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
	"github.com/frag-eval/frag-poll/pkg/metrics"
	"github.com/frag-eval/frag-poll/pkg/passid"
	"go.uber.org/zap"
)

// sink turns a ready submission into stored content and confirmations.
type sink struct {
	store   store.Store
	source  Source
	poller  string
	dryRun  bool
	evalReq store.EvalReq
}

func newSink(s store.Store, source Source, poller string, dryRun bool, evalReq store.EvalReq) *sink {
	return &sink{store: s, source: source, poller: poller, dryRun: dryRun, evalReq: evalReq}
}

// Ingest fetches every slot, submits what could be fetched and confirms the
// slot occupants at Submitted and the superseded objects at Superseded, all
// in one transaction.
func (s *sink) Ingest(ctx context.Context, spec *assignment.Spec, author model.Person, sub *submission.Submission) error {
	logger := passid.Logger(ctx, "sink").With("assignment", spec.Name, "author", author.Login)

	files := make([]model.File, 0, len(sub.Slots))
	for _, slot := range sub.SlotNames() {
		obj := sub.Slots[slot]
		data, err := s.source.Fetch(ctx, obj)
		if errors.Is(err, submission.ErrNotFound) {
			logger.Warnw("file vanished before it could be fetched, dropping it", "slot", slot, "location", obj.Location())
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", obj.Location(), err)
		}
		files = append(files, model.File{Name: slot, Data: data})
	}

	txCtx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	err = s.record(txCtx, logger, spec, author, sub, files)
	if err := store.Finish(txCtx, !s.dryRun, err); err != nil {
		return err
	}
	if s.dryRun {
		return nil
	}

	if len(files) > 0 {
		metrics.IncreaseSubmissionsMetric(s.poller)
	}
	metrics.IncreaseConfirmedMetric(s.poller, submission.Submitted.String(), len(sub.Slots))
	metrics.IncreaseConfirmedMetric(s.poller, submission.Superseded.String(), len(sub.Superseded))
	return nil
}

func (s *sink) record(ctx context.Context, logger *zap.SugaredLogger, spec *assignment.Spec, author model.Person, sub *submission.Submission, files []model.File) error {
	if len(files) > 0 {
		id, err := s.store.Grading().Submit(ctx, *spec.ID, author.ID, files, sub.Timestamp, s.evalReq)
		if err != nil {
			return err
		}
		logger.Infow("submitted", "submission", id, "files", len(files), "stamp", sub.Timestamp)
	} else {
		logger.Warn("no file of the submission could be fetched, not submitting")
	}

	tracker := s.store.Processed(s.poller)
	for _, slot := range sub.SlotNames() {
		if err := tracker.Confirm(ctx, sub.Slots[slot], submission.Submitted); err != nil {
			return err
		}
	}
	for _, obj := range sub.Superseded {
		if err := tracker.Confirm(ctx, obj, submission.Superseded); err != nil {
			return err
		}
	}
	return nil
}
