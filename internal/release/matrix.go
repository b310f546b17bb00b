package release

import "strings"

// Build types expanded for every release.
var buildTypes = []string{"standard", "core", "nano"}

// Editions expanded for every release; the numeric values are the Windows
// image indexes consumed by the build pipeline.
var editions = []struct {
	Index int
	Name  string
}{
	{1, "Home"},
	{6, "Pro"},
}

// MatrixEntry is one cell of the build matrix handed to the automation
// runner. Entries are derived per cycle and never persisted.
type MatrixEntry struct {
	Version     string `json:"version"`
	Build       string `json:"build"`
	ISOURL      string `json:"iso_url"`
	BuildType   string `json:"build_type"`
	Edition     int    `json:"edition"`
	EditionName string `json:"edition_name"`
	Title       string `json:"title"`
}

// Matrix is the build matrix object consumed by the automation runner.
type Matrix struct {
	Include []MatrixEntry `json:"include"`
}

var titleSanitizer = strings.NewReplacer(" ", "_", "(", "", ")", "")

// BuildMatrix expands releases into the fixed build-type x edition matrix.
// The output always holds exactly 6 entries per release.
func BuildMatrix(releases []Release) Matrix {
	m := Matrix{Include: make([]MatrixEntry, 0, len(releases)*len(buildTypes)*len(editions))}
	for _, r := range releases {
		title := titleSanitizer.Replace(r.Title)
		for _, bt := range buildTypes {
			for _, ed := range editions {
				m.Include = append(m.Include, MatrixEntry{
					Version:     r.Version,
					Build:       r.BuildNumber,
					ISOURL:      r.ISOURL,
					BuildType:   bt,
					Edition:     ed.Index,
					EditionName: ed.Name,
					Title:       title,
				})
			}
		}
	}
	return m
}
