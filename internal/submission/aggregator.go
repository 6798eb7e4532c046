package submission

import (
	"context"
	"fmt"
	"sort"
)

// ProcessedFunc reports whether obj has been recorded at the given confidence
// or above.
type ProcessedFunc func(ctx context.Context, obj RemoteObject, confidence Confidence) (bool, error)

// Aggregator folds the matched objects of one assignment into per-author
// submissions and keeps the unmatched ones aside.
type Aggregator struct {
	assignment  string
	isProcessed ProcessedFunc
	submissions map[string]*Submission
	unmatched   map[string][]RemoteObject
}

func NewAggregator(asgn string, isProcessed ProcessedFunc) *Aggregator {
	return &Aggregator{
		assignment:  asgn,
		isProcessed: isProcessed,
		submissions: make(map[string]*Submission),
		unmatched:   make(map[string][]RemoteObject),
	}
}

// Add folds obj into the submission of author under slot. Newer versions of
// an occupied slot push the previous occupant to Superseded; equal or older
// ones are superseded themselves. A Revisioned object of a newer revision
// supersedes the whole submission and one of an older revision is
// superseded on arrival.
func (a *Aggregator) Add(ctx context.Context, author, slot string, obj RemoteObject) error {
	sub, found := a.submissions[author]
	if !found {
		sub = newSubmission(author, a.assignment)
		a.submissions[author] = sub
	}

	if rev, ok := obj.(Revisioned); ok && !sub.adoptRevision(rev) {
		sub.Superseded = append(sub.Superseded, obj)
		return nil
	}

	if current, occupied := sub.Slots[slot]; occupied {
		if !obj.ChangedAt().After(current.ChangedAt()) {
			sub.Superseded = append(sub.Superseded, obj)
			return nil
		}
		sub.Superseded = append(sub.Superseded, current)
	}

	sub.Slots[slot] = obj
	if obj.ChangedAt().After(sub.Timestamp) {
		sub.Timestamp = obj.ChangedAt()
	}

	done, err := a.isProcessed(ctx, obj, Submitted)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", obj.Identity(), err)
	}
	sub.Dirty = sub.Dirty || !done
	return nil
}

// AddUnmatched records an object that matched no slot of the assignment.
func (a *Aggregator) AddUnmatched(obj RemoteObject) {
	a.unmatched[obj.Author()] = append(a.unmatched[obj.Author()], obj)
}

// Submissions returns the aggregated submissions ordered by author.
func (a *Aggregator) Submissions() []*Submission {
	out := make([]*Submission, 0, len(a.submissions))
	for _, sub := range a.submissions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Author < out[j].Author })
	return out
}

// Get returns the submission of author, if any object of theirs matched.
func (a *Aggregator) Get(author string) (*Submission, bool) {
	sub, ok := a.submissions[author]
	return sub, ok
}

// Unmatched returns the unmatched objects of authors that have no submission
// for this assignment.
func (a *Aggregator) Unmatched() map[string][]RemoteObject {
	out := make(map[string][]RemoteObject)
	for author, objs := range a.unmatched {
		if _, ok := a.submissions[author]; ok {
			continue
		}
		out[author] = objs
	}
	return out
}
