// Package release defines the release data model and the pure logic for
// version inference, build comparison, deduplication, and matrix expansion.
package release

import "time"

// Channel values carried on a Release.
const (
	ChannelRetail  = "retail"
	ChannelInsider = "insider"
)

// Release represents one detected Windows 11 release. Records are created by
// a source adapter at detection time and never mutated afterwards.
type Release struct {
	BuildID      string    `json:"build_id"`
	BuildNumber  string    `json:"build_number"`
	Version      string    `json:"version"`
	Title        string    `json:"title"`
	ISOURL       string    `json:"iso_url"`
	DetectedAt   time.Time `json:"detected_date"`
	Architecture string    `json:"architecture"`
	Channel      string    `json:"channel"`
	Language     string    `json:"language"`
}
