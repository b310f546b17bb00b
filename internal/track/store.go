// Package track persists which builds have already been seen across
// detection cycles.
package track

import (
	"context"
	"time"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// State is the persisted tracking aggregate. Builds retains every build id
// ever seen; records are superseded, never deleted.
type State struct {
	Builds     map[string]release.Release `json:"builds"`
	LastCheck  *time.Time                 `json:"last_check"`
	CheckCount int                        `json:"check_count"`
}

// NewState returns the empty default state.
func NewState() State {
	return State{Builds: make(map[string]release.Release)}
}

// Known reports whether the build id has been seen in a previous cycle.
func (s State) Known(buildID string) bool {
	_, ok := s.Builds[buildID]
	return ok
}

// Store loads and saves tracking state. Load is tolerant: a missing or
// unreadable backing store yields the empty default, never an error the
// cycle cannot recover from.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}
