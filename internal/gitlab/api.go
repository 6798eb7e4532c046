package gitlab

import (
	"context"
	"net/http"
	"time"

	"github.com/frag-eval/frag-poll/internal/submission"
	"github.com/pkg/errors"
	gl "github.com/xanzy/go-gitlab"
)

const perPage = 100

// Tag is a repository tag resolved to its commit.
type Tag struct {
	Name     string
	CommitID string
	// CreatedAt is the commit creation time recorded by the server, not the
	// author date supplied by the student.
	CreatedAt time.Time
}

type TreeEntry struct {
	ID   string
	Name string
	Path string
	Type string
}

// API is the part of the git hosting API used by the poller.
type API interface {
	ProjectExists(ctx context.Context, path string) (bool, error)
	GroupID(ctx context.Context, path string) (int, bool, error)
	CreateGroup(ctx context.Context, parentID *int, name string) (int, error)
	CreateProject(ctx context.Context, namespaceID *int, name string) error
	AddGroupMember(ctx context.Context, groupID int, login string, level gl.AccessLevelValue) error
	ListTags(ctx context.Context, project string) ([]Tag, error)
	ListTree(ctx context.Context, project, ref, dir string) ([]TreeEntry, error)
	Blob(ctx context.Context, project, sha string) ([]byte, error)
}

type client struct {
	gl *gl.Client
}

func NewClient(baseURL, token string) (API, error) {
	c, err := gl.NewClient(token, gl.WithBaseURL(baseURL))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gitlab client")
	}
	return &client{gl: c}, nil
}

func notFound(resp *gl.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func (c *client) ProjectExists(ctx context.Context, path string) (bool, error) {
	_, resp, err := c.gl.Projects.GetProject(path, nil, gl.WithContext(ctx))
	if notFound(resp) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to get project %s", path)
	}
	return true, nil
}

func (c *client) GroupID(ctx context.Context, path string) (int, bool, error) {
	group, resp, err := c.gl.Groups.GetGroup(path, nil, gl.WithContext(ctx))
	if notFound(resp) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to get group %s", path)
	}
	return group.ID, true, nil
}

func (c *client) CreateGroup(ctx context.Context, parentID *int, name string) (int, error) {
	group, _, err := c.gl.Groups.CreateGroup(&gl.CreateGroupOptions{
		Name:       gl.Ptr(name),
		Path:       gl.Ptr(name),
		ParentID:   parentID,
		Visibility: gl.Ptr(gl.PrivateVisibility),
	}, gl.WithContext(ctx))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create group %s", name)
	}
	return group.ID, nil
}

func (c *client) CreateProject(ctx context.Context, namespaceID *int, name string) error {
	_, _, err := c.gl.Projects.CreateProject(&gl.CreateProjectOptions{
		Name:        gl.Ptr(name),
		Path:        gl.Ptr(name),
		NamespaceID: namespaceID,
		Visibility:  gl.Ptr(gl.PrivateVisibility),
	}, gl.WithContext(ctx))
	return errors.Wrapf(err, "failed to create project %s", name)
}

func (c *client) AddGroupMember(ctx context.Context, groupID int, login string, level gl.AccessLevelValue) error {
	users, _, err := c.gl.Users.ListUsers(&gl.ListUsersOptions{Username: gl.Ptr(login)}, gl.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "failed to look up user %s", login)
	}
	if len(users) == 0 {
		return errors.Errorf("user %s does not exist", login)
	}
	_, _, err = c.gl.GroupMembers.AddGroupMember(groupID, &gl.AddGroupMemberOptions{
		UserID:      gl.Ptr(users[0].ID),
		AccessLevel: gl.Ptr(level),
	}, gl.WithContext(ctx))
	return errors.Wrapf(err, "failed to add %s to group %d", login, groupID)
}

func (c *client) ListTags(ctx context.Context, project string) ([]Tag, error) {
	var tags []Tag
	opts := &gl.ListTagsOptions{ListOptions: gl.ListOptions{PerPage: perPage, Page: 1}}
	for {
		page, resp, err := c.gl.Tags.ListTags(project, opts, gl.WithContext(ctx))
		if notFound(resp) {
			return nil, errors.Wrapf(submission.ErrNotFound, "project %s", project)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list tags of %s", project)
		}
		for _, t := range page {
			if t.Commit == nil || t.Commit.CreatedAt == nil {
				continue
			}
			tags = append(tags, Tag{Name: t.Name, CommitID: t.Commit.ID, CreatedAt: *t.Commit.CreatedAt})
		}
		if resp.NextPage == 0 {
			return tags, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *client) ListTree(ctx context.Context, project, ref, dir string) ([]TreeEntry, error) {
	var entries []TreeEntry
	opts := &gl.ListTreeOptions{
		ListOptions: gl.ListOptions{PerPage: perPage, Page: 1},
		Path:        gl.Ptr(dir),
		Ref:         gl.Ptr(ref),
	}
	for {
		page, resp, err := c.gl.Repositories.ListTree(project, opts, gl.WithContext(ctx))
		if notFound(resp) {
			return nil, errors.Wrapf(submission.ErrNotFound, "%s:%s at %s", project, dir, ref)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s:%s at %s", project, dir, ref)
		}
		for _, n := range page {
			entries = append(entries, TreeEntry{ID: n.ID, Name: n.Name, Path: n.Path, Type: n.Type})
		}
		if resp.NextPage == 0 {
			return entries, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *client) Blob(ctx context.Context, project, sha string) ([]byte, error) {
	data, resp, err := c.gl.Repositories.RawBlobContent(project, sha, gl.WithContext(ctx))
	if notFound(resp) {
		return nil, errors.Wrapf(submission.ErrNotFound, "blob %s of %s", sha, project)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch blob %s of %s", sha, project)
	}
	return data, nil
}
