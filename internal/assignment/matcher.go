package assignment

import (
	"path/filepath"
	"regexp"
)

type slotPattern struct {
	slot string
	re   *regexp.Regexp
}

// Matcher decides which expected slot, if any, a remote file name belongs to.
type Matcher struct {
	single   string
	template *slotPattern
	slots    []slotPattern
}

func NewMatcher(template string, fileNames []string, multifile Multifile) *Matcher {
	m := &Matcher{}
	if template == "" && multifile == MultifileDisabled && len(fileNames) == 1 {
		m.single = fileNames[0]
		return m
	}
	if template != "" {
		m.template = &slotPattern{slot: template, re: templatePattern(template)}
	}
	for _, name := range fileNames {
		m.slots = append(m.slots, slotPattern{slot: name, re: templatePattern(name)})
	}
	return m
}

// CanonicalSlot returns the slot name for displayName. A false result means
// the file does not belong to the assignment.
func (m *Matcher) CanonicalSlot(displayName string) (string, bool) {
	if m.single != "" {
		return m.single, true
	}
	if m.template != nil && m.template.re.MatchString(displayName) {
		return m.template.slot, true
	}
	for _, p := range m.slots {
		if p.re.MatchString(displayName) {
			return p.slot, true
		}
	}
	return "", false
}

// templatePattern accepts an optional numeric id prefix, an optional name
// prefix and an optional lowercase disambiguation suffix around the stem:
// (ID-)?(NAME-)?stem(_suffix)?.ext
func templatePattern(template string) *regexp.Regexp {
	ext := filepath.Ext(template)
	stem := template[:len(template)-len(ext)]
	return regexp.MustCompile(`^(?:[0-9]+-)?(?:[^-/]+-)?` +
		regexp.QuoteMeta(stem) + `(?:_[a-z]+)?` + regexp.QuoteMeta(ext) + `$`)
}
