package filestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/reconcile"
	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
	"go.uber.org/zap"
)

const authorMetadataKey = "author"

// Source lists submitted files from configured storage folders. The owner of
// a file is taken from its "author" user metadata.
type Source struct {
	bucket Bucket
}

// Make sure we conform to reconcile.Source interface
var _ reconcile.Source = (*Source)(nil)

func NewSource(bucket Bucket) *Source {
	return &Source{bucket: bucket}
}

func (s *Source) Locations(_ context.Context, spec *assignment.Spec, _ []model.Person) ([]reconcile.Location, error) {
	locations := make([]reconcile.Location, 0, len(spec.Locations))
	for _, folder := range spec.Locations {
		locations = append(locations, reconcile.Location{Path: folder})
	}
	return locations, nil
}

// List returns the files directly inside the folder. Object storage has no
// empty folders, so a folder without files is reported as not found.
func (s *Source) List(ctx context.Context, _ *assignment.Spec, loc reconcile.Location) ([]submission.RemoteObject, error) {
	prefix := strings.TrimSuffix(loc.Path, "/") + "/"
	entries, err := s.bucket.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("folder %s: %w", loc.Path, submission.ErrNotFound)
	}

	objects := make([]submission.RemoteObject, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Key, "/") {
			continue
		}
		owner := metadata(e.Metadata, authorMetadataKey)
		if owner == "" {
			zap.S().Named("filestore").Warnw("file without author, skipping", "bucket", s.bucket.Name(), "key", e.Key)
			continue
		}
		objects = append(objects, &Object{
			Bucket:   s.bucket.Name(),
			Key:      e.Key,
			Owner:    owner,
			Modified: e.Modified,
		})
	}
	return objects, nil
}

func (s *Source) Fetch(ctx context.Context, obj submission.RemoteObject) ([]byte, error) {
	return s.bucket.Get(ctx, obj.Identity())
}

// metadata looks a user metadata key up regardless of the S3 header prefix
// and case the server returns it with.
func metadata(meta map[string]string, key string) string {
	for k, v := range meta {
		name := strings.ToLower(k)
		name = strings.TrimPrefix(name, "x-amz-meta-")
		if name == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
