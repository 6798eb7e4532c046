package gitlab

import (
	"context"
	"fmt"
	"strings"

	"github.com/frag-eval/frag-poll/internal/submission"
	gl "github.com/xanzy/go-gitlab"
	"go.uber.org/zap"
)

// CollaboratorAccess is the access level granted on every created group.
const CollaboratorAccess = gl.MaintainerPermissions

// Materializer lazily creates the groups and the project of a project path.
type Materializer struct {
	api           API
	collaborators []string
	dryRun        bool
	known         map[string]bool
}

// NewMaterializer returns a materializer granting collaborators access to
// the groups it creates. In dry-run mode nothing is created and a missing
// project is reported as not found.
func NewMaterializer(api API, collaborators []string, dryRun bool) *Materializer {
	return &Materializer{
		api:           api,
		collaborators: collaborators,
		dryRun:        dryRun,
		known:         make(map[string]bool),
	}
}

// Ensure makes sure the project at path exists. It finds the deepest existing
// group by walking upward and then creates the missing groups and the
// project downward.
func (m *Materializer) Ensure(ctx context.Context, path string) error {
	path = strings.Trim(path, "/")
	if m.known[path] {
		return nil
	}

	exists, err := m.api.ProjectExists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		m.known[path] = true
		return nil
	}

	if m.dryRun {
		zap.S().Named("materializer").Infow("dry run, not creating project", "project", path)
		return fmt.Errorf("project %s: %w", path, submission.ErrNotFound)
	}

	parts := strings.Split(path, "/")
	groups, name := parts[:len(parts)-1], parts[len(parts)-1]

	depth := len(groups)
	var parentID *int
	for ; depth > 0; depth-- {
		id, found, err := m.api.GroupID(ctx, strings.Join(groups[:depth], "/"))
		if err != nil {
			return err
		}
		if found {
			parentID = &id
			break
		}
	}

	logger := zap.S().Named("materializer")
	for i := depth; i < len(groups); i++ {
		id, err := m.api.CreateGroup(ctx, parentID, groups[i])
		if err != nil {
			return err
		}
		logger.Infow("created group", "group", strings.Join(groups[:i+1], "/"))
		for _, login := range m.collaborators {
			if err := m.api.AddGroupMember(ctx, id, login, CollaboratorAccess); err != nil {
				return fmt.Errorf("failed to grant %s access to %s: %w", login, strings.Join(groups[:i+1], "/"), err)
			}
		}
		parentID = &id
	}

	if err := m.api.CreateProject(ctx, parentID, name); err != nil {
		return err
	}
	logger.Infow("created project", "project", path)
	m.known[path] = true
	return nil
}
