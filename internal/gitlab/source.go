package gitlab

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/reconcile"
	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
	"go.uber.org/zap"
)

// Source lists files of commits tagged for submission in per-author projects.
type Source struct {
	api          API
	materializer *Materializer
}

// Make sure we conform to reconcile.Source interface
var _ reconcile.Source = (*Source)(nil)

func NewSource(api API, materializer *Materializer) *Source {
	return &Source{api: api, materializer: materializer}
}

// ProjectPath expands the project template for one person.
func ProjectPath(template string, person model.Person) string {
	return strings.NewReplacer(
		"{login}", person.Login,
		"{uco}", strconv.FormatInt(person.ID, 10),
	).Replace(template)
}

// SubmitTag matches tags that submit the named assignment: submit-NAME with
// any of - _ / as separator and an optional suffix.
func SubmitTag(asgn string) *regexp.Regexp {
	return regexp.MustCompile(`^submit[-_/]` + regexp.QuoteMeta(asgn) + `(?:[-_/].*)?$`)
}

func (s *Source) Locations(_ context.Context, spec *assignment.Spec, people []model.Person) ([]reconcile.Location, error) {
	locations := make([]reconcile.Location, 0, len(people))
	for _, p := range people {
		locations = append(locations, reconcile.Location{
			Path:   ProjectPath(spec.Project, p),
			Author: p.Login,
		})
	}
	return locations, nil
}

// List materializes the project, then returns the files of the assignment
// directory of every commit tagged for submission.
func (s *Source) List(ctx context.Context, spec *assignment.Spec, loc reconcile.Location) ([]submission.RemoteObject, error) {
	if err := s.materializer.Ensure(ctx, loc.Path); err != nil {
		return nil, fmt.Errorf("failed to materialize %s: %w", loc.Path, err)
	}

	tags, err := s.api.ListTags(ctx, loc.Path)
	if err != nil {
		return nil, err
	}

	logger := zap.S().Named("gitlab_source")
	submitTag := SubmitTag(spec.Name)
	seen := make(map[string]bool)
	var objects []submission.RemoteObject
	for _, tag := range tags {
		if !submitTag.MatchString(tag.Name) || seen[tag.CommitID] {
			continue
		}
		seen[tag.CommitID] = true

		entries, err := s.api.ListTree(ctx, loc.Path, tag.CommitID, spec.Directory)
		if errors.Is(err, submission.ErrNotFound) {
			logger.Debugw("tagged commit has no assignment directory", "project", loc.Path, "tag", tag.Name, "directory", spec.Directory)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type != "blob" {
				continue
			}
			objects = append(objects, &Object{
				Project:  loc.Path,
				Tag:      tag.Name,
				CommitID: tag.CommitID,
				Path:     e.Path,
				Name:     e.Name,
				BlobID:   e.ID,
				Owner:    loc.Author,
				Created:  tag.CreatedAt,
			})
		}
	}
	return objects, nil
}

func (s *Source) Fetch(ctx context.Context, obj submission.RemoteObject) ([]byte, error) {
	o, ok := obj.(*Object)
	if !ok {
		return nil, fmt.Errorf("not a git object: %s", obj.Identity())
	}
	return s.api.Blob(ctx, o.Project, o.BlobID)
}
