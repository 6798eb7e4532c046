// Package passid tags the log lines of one reconciliation pass with a shared
// id, so a pass can be followed from the driver down to every ingested
// submission.
package passid

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type passKey struct{}

// Start returns ctx carrying a new pass id. A ctx that is already inside a
// pass keeps its id.
func Start(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, passKey{}, id), id
}

// FromContext returns the pass id of ctx, or "" outside of a pass.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(passKey{}).(string)
	return id
}

// Logger returns the global logger named name. Inside a pass every entry
// carries the pass id.
func Logger(ctx context.Context, name string) *zap.SugaredLogger {
	logger := zap.S().Named(name)
	if id := FromContext(ctx); id != "" {
		logger = logger.With("pass", id)
	}
	return logger
}
