package resolve

import (
	"fmt"
	"time"
)

// State is the position of a Resolver in its one-way lifecycle.
type State int32

const (
	StatePending State = iota
	StateBuilding
	StateRewriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBuilding:
		return "building"
	case StateRewriting:
		return "rewriting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Report summarizes one run.
type Report struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Root  string `json:"root" yaml:"root"`

	// Documents is the number of documents visited by phase 1.
	Documents int `json:"documents" yaml:"documents"`
	// Entries is the size of the resolution table.
	Entries int `json:"entries" yaml:"entries"`
	// Skipped counts malformed reference tags ignored during phase 1.
	Skipped int `json:"skipped" yaml:"skipped"`

	// References counts reference tags seen by phase 2.
	References int `json:"references" yaml:"references"`
	// Rewritten counts references whose identifier was replaced.
	Rewritten int `json:"rewritten" yaml:"rewritten"`
	// Unresolved lists distinct short identifiers with no declaration.
	Unresolved []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`

	Conflicts []Conflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Unstable  []string   `json:"unstable,omitempty" yaml:"unstable,omitempty"`

	// Failures lists per-document phase 2 errors, in scan order.
	Failures []*DocumentError `json:"-" yaml:"-"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}
