// Package source defines the contract release source adapters implement.
package source

import (
	"context"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// Source produces candidate releases for one detection cycle. A failed check
// is reported through the error; the caller isolates it so one source never
// aborts the others.
type Source interface {
	Name() string
	Check(ctx context.Context) ([]release.Release, error)
}
