package gitlab_test

import (
	"context"
	"fmt"
	"path"

	"github.com/frag-eval/frag-poll/internal/gitlab"
	"github.com/frag-eval/frag-poll/internal/submission"
	gl "github.com/xanzy/go-gitlab"
)

type member struct {
	group int
	login string
	level gl.AccessLevelValue
}

// fakeAPI is an in-memory git hosting server.
type fakeAPI struct {
	groups   map[string]int
	projects map[string]bool
	tags     map[string][]gitlab.Tag
	trees    map[string][]gitlab.TreeEntry
	blobs    map[string][]byte
	members  []member
	created  []string
	nextID   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		groups:   map[string]int{},
		projects: map[string]bool{},
		tags:     map[string][]gitlab.Tag{},
		trees:    map[string][]gitlab.TreeEntry{},
		blobs:    map[string][]byte{},
		nextID:   100,
	}
}

func (f *fakeAPI) groupPath(id *int) string {
	if id == nil {
		return ""
	}
	for p, gid := range f.groups {
		if gid == *id {
			return p
		}
	}
	return ""
}

func (f *fakeAPI) ProjectExists(_ context.Context, p string) (bool, error) {
	return f.projects[p], nil
}

func (f *fakeAPI) GroupID(_ context.Context, p string) (int, bool, error) {
	id, ok := f.groups[p]
	return id, ok, nil
}

func (f *fakeAPI) CreateGroup(_ context.Context, parentID *int, name string) (int, error) {
	p := path.Join(f.groupPath(parentID), name)
	f.nextID++
	f.groups[p] = f.nextID
	f.created = append(f.created, "group "+p)
	return f.nextID, nil
}

func (f *fakeAPI) CreateProject(_ context.Context, namespaceID *int, name string) error {
	p := path.Join(f.groupPath(namespaceID), name)
	f.projects[p] = true
	f.created = append(f.created, "project "+p)
	return nil
}

func (f *fakeAPI) AddGroupMember(_ context.Context, groupID int, login string, level gl.AccessLevelValue) error {
	f.members = append(f.members, member{group: groupID, login: login, level: level})
	return nil
}

func (f *fakeAPI) ListTags(_ context.Context, project string) ([]gitlab.Tag, error) {
	if !f.projects[project] {
		return nil, fmt.Errorf("project %s: %w", project, submission.ErrNotFound)
	}
	return f.tags[project], nil
}

func (f *fakeAPI) ListTree(_ context.Context, project, ref, dir string) ([]gitlab.TreeEntry, error) {
	entries, ok := f.trees[project+"@"+ref+":"+dir]
	if !ok {
		return nil, fmt.Errorf("%s:%s: %w", project, dir, submission.ErrNotFound)
	}
	return entries, nil
}

func (f *fakeAPI) Blob(_ context.Context, project, sha string) ([]byte, error) {
	data, ok := f.blobs[project+"/"+sha]
	if !ok {
		return nil, submission.ErrNotFound
	}
	return data, nil
}
