package submission

import (
	"sort"
	"time"

	"github.com/frag-eval/frag-poll/internal/assignment"
)

// Submission groups the matched objects of one author for one assignment
// during a single polling pass. It is never persisted directly.
type Submission struct {
	Author     string
	Assignment string
	Slots      map[string]RemoteObject
	Timestamp  time.Time
	// Dirty is set when at least one slot occupant has not yet been recorded
	// at Submitted confidence.
	Dirty      bool
	Superseded []RemoteObject

	// revision of the Revisioned objects occupying the slots and the time
	// it was made.
	revision   string
	revisionAt time.Time
}

func newSubmission(author, asgn string) *Submission {
	return &Submission{
		Author:     author,
		Assignment: asgn,
		Slots:      make(map[string]RemoteObject),
	}
}

// IsTodo reports whether the submission should be ingested in this pass.
// Under MultifileAll a partial submission is held back until every expected
// slot is occupied.
func (s *Submission) IsTodo(policy assignment.Multifile, expected []string) bool {
	if !s.Dirty {
		return false
	}
	if policy != assignment.MultifileAll {
		return true
	}
	for _, name := range expected {
		if _, ok := s.Slots[name]; !ok {
			return false
		}
	}
	return true
}

// SlotNames returns the occupied slot names in lexical order.
func (s *Submission) SlotNames() []string {
	names := make([]string, 0, len(s.Slots))
	for name := range s.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// adoptRevision reports whether obj may join the submission. An object of a
// newer revision moves every current occupant to Superseded first.
func (s *Submission) adoptRevision(obj Revisioned) bool {
	switch {
	case s.revision == obj.Revision():
		return true
	case s.revision != "" && !obj.ChangedAt().After(s.revisionAt):
		return false
	}

	for _, name := range s.SlotNames() {
		s.Superseded = append(s.Superseded, s.Slots[name])
	}
	s.Slots = make(map[string]RemoteObject)
	s.Timestamp = time.Time{}
	s.Dirty = false
	s.revision, s.revisionAt = obj.Revision(), obj.ChangedAt()
	return true
}
