package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

const defaultInterval = 300 * time.Second

var (
	reInterval = regexp.MustCompile(`^([0-9]+) *(s|m|h)$`)
	reVariable = regexp.MustCompile(`\{([a-z_]+)\}`)

	projectVariables = []string{"login", "uco"}
)

// Interval is the pause between two polls. It accepts an integer number of
// seconds or a number with an s, m or h suffix.
type Interval time.Duration

func (i *Interval) UnmarshalJSON(data []byte) error {
	var seconds int64
	if err := json.Unmarshal(data, &seconds); err == nil {
		*i = Interval(time.Duration(seconds) * time.Second)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("not an interval: %s", string(data))
	}
	m := reInterval.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return fmt.Errorf("invalid interval specification: %s, must be integer with an optional suffix 's' (seconds), 'm' (minutes) or 'h' (hours)", raw)
	}
	n, _ := strconv.ParseInt(m[1], 10, 64)
	unit := map[string]time.Duration{"s": time.Second, "m": time.Minute, "h": time.Hour}[m[2]]
	*i = Interval(time.Duration(n) * unit)
	return nil
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

type Notify struct {
	Enabled bool     `json:"enabled"`
	From    string   `json:"from" validate:"omitempty,email"`
	To      []string `json:"to" validate:"dive,email"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type Gitlab struct {
	Project       string   `json:"project"`
	Collaborators []string `json:"collaborators"`
}

type AssignmentConfig struct {
	// Folders are the file-storage locations, file poller only.
	Folders   []string             `json:"folders"`
	Folder    string               `json:"folder"`
	FileNames []string             `json:"file_names"`
	Template  string               `json:"file_name"`
	Multifile assignment.Multifile `json:"multifile"`
	Enabled   *assignment.Enabled  `json:"enabled"`
	// Project overrides the global project template, git poller only.
	Project   string `json:"project"`
	Directory string `json:"directory"`
}

// Poller is the YAML configuration file shared by the two pollers.
type Poller struct {
	Interval    Interval                    `json:"interval"`
	Notify      Notify                      `json:"notify"`
	Gitlab      Gitlab                      `json:"gitlab"`
	Assignments map[string]AssignmentConfig `json:"assignments" validate:"dive"`
}

// LoadPoller reads and validates the poller configuration file.
func LoadPoller(path string) (*Poller, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config %s: %w", path, err)
	}
	return ParsePoller(raw)
}

func ParsePoller(raw []byte) (*Poller, error) {
	p := Poller{Interval: Interval(defaultInterval)}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := validator.New().Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if p.Notify.Enabled && (p.Notify.From == "" || len(p.Notify.To) == 0) {
		return nil, fmt.Errorf("%w: notify requires both from and to", ErrConfig)
	}
	return &p, nil
}

// FileAssignments builds the file poller assignment specs. Every assignment
// must name at least one folder.
func (p *Poller) FileAssignments() ([]*assignment.Spec, error) {
	specs := make([]*assignment.Spec, 0, len(p.Assignments))
	for _, name := range p.assignmentNames() {
		raw := p.Assignments[name]
		spec := raw.spec(name)
		if raw.Folder != "" {
			spec.Locations = append(spec.Locations, raw.Folder)
		}
		spec.Locations = append(spec.Locations, raw.Folders...)
		if len(spec.Locations) == 0 {
			return nil, NewErrMissingSource(name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// GitAssignments builds the git poller assignment specs. Each assignment needs
// a project template, either its own or the global one, referring to exactly
// one author variable.
func (p *Poller) GitAssignments() ([]*assignment.Spec, error) {
	specs := make([]*assignment.Spec, 0, len(p.Assignments))
	for _, name := range p.assignmentNames() {
		raw := p.Assignments[name]
		spec := raw.spec(name)
		spec.Project = raw.Project
		if spec.Project == "" {
			spec.Project = p.Gitlab.Project
		}
		if spec.Project == "" {
			return nil, NewErrMissingSource(name)
		}
		if err := checkProjectTemplate(spec.Project); err != nil {
			return nil, err
		}
		spec.Directory = raw.Directory
		if spec.Directory == "" {
			spec.Directory = name
		}
		spec.Locations = []string{spec.Project}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (p *Poller) assignmentNames() []string {
	names := make([]string, 0, len(p.Assignments))
	for name := range p.Assignments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a AssignmentConfig) spec(name string) *assignment.Spec {
	enabled := assignment.AlwaysEnabled()
	if a.Enabled != nil {
		enabled = *a.Enabled
	}
	return &assignment.Spec{
		Name:      name,
		FileNames: append([]string(nil), a.FileNames...),
		Template:  a.Template,
		Multifile: a.Multifile,
		Enabled:   enabled,
	}
}

func checkProjectTemplate(template string) error {
	used := map[string]bool{}
	for _, m := range reVariable.FindAllStringSubmatch(template, -1) {
		known := false
		for _, v := range projectVariables {
			if m[1] == v {
				known = true
			}
		}
		if !known {
			return NewErrAmbiguousVariable(template, fmt.Sprintf("uses unknown variable {%s}", m[1]))
		}
		used[m[1]] = true
	}
	switch len(used) {
	case 0:
		return NewErrAmbiguousVariable(template, "does not identify the author, use {login} or {uco}")
	case 1:
		return nil
	default:
		return NewErrAmbiguousVariable(template, "uses both {login} and {uco}")
	}
}
