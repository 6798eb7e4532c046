package assignment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Multifile is the policy for assignments that consist of several files.
type Multifile int

const (
	// MultifileDisabled expects exactly one file.
	MultifileDisabled Multifile = iota
	// MultifileAny submits whatever subset of the expected files is present.
	MultifileAny
	// MultifileAll holds the submission back until every expected file is present.
	MultifileAll
)

func (m Multifile) String() string {
	switch m {
	case MultifileDisabled:
		return "disabled"
	case MultifileAny:
		return "any"
	case MultifileAll:
		return "all"
	default:
		return fmt.Sprintf("multifile(%d)", int(m))
	}
}

func ParseMultifile(raw string) (Multifile, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "disabled", "false", "no":
		return MultifileDisabled, nil
	case "any", "true", "yes":
		return MultifileAny, nil
	case "all":
		return MultifileAll, nil
	}
	return MultifileDisabled, fmt.Errorf("invalid multifile policy %q, must be one of disabled, any, all", raw)
}

func (m *Multifile) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*m = MultifileAny
		} else {
			*m = MultifileDisabled
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("multifile must be a boolean or a string: %w", err)
	}
	parsed, err := ParseMultifile(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Multifile) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
