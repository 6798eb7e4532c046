package assignment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrSlotCount = errors.New("multifile disabled requires exactly one expected file name")

// Spec is one configured assignment. It is read-only during a polling pass.
type Spec struct {
	Name string
	// ID is the grading store identity of the assignment, nil until resolved.
	ID        *int64
	Locations []string
	FileNames []string
	Template  string
	Multifile Multifile
	Enabled   Enabled

	// Project is the git project path template, git poller only.
	Project string
	// Directory inside the repository holding the assignment files, git poller only.
	Directory string
}

// Validate checks the slot configuration against the multifile policy.
func (s *Spec) Validate() error {
	if s.Multifile == MultifileDisabled && len(s.FileNames) != 1 {
		return fmt.Errorf("assignment %s has %d file names: %w", s.Name, len(s.FileNames), ErrSlotCount)
	}
	return nil
}

func (s *Spec) IsEnabled(now time.Time) bool {
	return s.Enabled.At(now)
}

// Matcher returns the slot matcher for the assignment.
func (s *Spec) Matcher() *Matcher {
	return NewMatcher(s.Template, s.FileNames, s.Multifile)
}

func (s *Spec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assignment[%s enabled=%v", s.Name, s.Enabled.At(time.Now()))
	if s.ID != nil {
		fmt.Fprintf(&b, " id=%d", *s.ID)
	}
	if len(s.FileNames) > 0 {
		fmt.Fprintf(&b, " file_names=%v", s.FileNames)
	}
	fmt.Fprintf(&b, " multifile=%s]", s.Multifile)
	return b.String()
}
