package reconcile

import (
	"context"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/notify"
	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
)

// Location is one place a source lists objects from. Author is set when the
// location belongs to a single person, as a per-student repository does.
type Location struct {
	Path   string
	Author string
}

// Source is the backend boundary of the driver: everything it needs from a
// file-storage API or a git hosting server. Absence of a location or of a
// listed object is reported with submission.ErrNotFound.
type Source interface {
	Locations(ctx context.Context, spec *assignment.Spec, people []model.Person) ([]Location, error)
	List(ctx context.Context, spec *assignment.Spec, loc Location) ([]submission.RemoteObject, error)
	Fetch(ctx context.Context, obj submission.RemoteObject) ([]byte, error)
}

// Notifier tells the operator about extraneous objects of one author.
type Notifier interface {
	Notify(ctx context.Context, n notify.Extraneous) error
}
