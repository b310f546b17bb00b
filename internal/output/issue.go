package output

import (
	"fmt"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// Issue is a GitHub issue payload announcing a new release.
type Issue struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// NewReleaseIssue builds the issue payload for one detected release.
func NewReleaseIssue(r release.Release) Issue {
	body := fmt.Sprintf(`## New Windows Release Detected

**Build Information:**
- **Title:** %s
- **Build Number:** %s
- **Version:** %s
- **Architecture:** %s
- **Channel:** %s
- **Detection Date:** %s

**ISO Source:**
- %s

**Automated Actions:**
- [ ] Trigger Standard build
- [ ] Trigger Core build
- [ ] Trigger Nano build
- [ ] Test builds in VM
- [ ] Upload artifacts
- [ ] Update documentation

**Build Matrix:**
- Home Edition (Standard, Core, Nano)
- Pro Edition (Standard, Core, Nano)
`,
		r.Title,
		r.BuildNumber,
		r.Version,
		r.Architecture,
		r.Channel,
		r.DetectedAt.Format("2006-01-02T15:04:05Z07:00"),
		r.ISOURL,
	)
	return Issue{
		Title:  fmt.Sprintf("New Windows %s Release - Build %s", r.Version, r.BuildNumber),
		Body:   body,
		Labels: []string{"automated", "new-release", "build-pending"},
	}
}
