// Package output serializes cycle results for the automation runner.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// WriteActions writes the key=value lines consumed by the workflow runner to
// path. When no releases were found it writes the explicit empty markers so
// downstream steps never see a missing key.
func WriteActions(path string, releases []release.Release, matrix release.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := writeActions(f, releases, matrix); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

func writeActions(w io.Writer, releases []release.Release, matrix release.Matrix) error {
	if len(releases) == 0 {
		_, err := fmt.Fprint(w, "has_new=false\nnew_releases=[]\nreleases_matrix={}\n")
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	releasesJSON, err := json.Marshal(releases)
	if err != nil {
		return fmt.Errorf("marshal releases: %w", err)
	}
	matrixJSON, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("marshal matrix: %w", err)
	}

	_, err = fmt.Fprintf(w, "has_new=true\nnew_releases=%s\nreleases_matrix=%s\nrelease_count=%d\n",
		releasesJSON, matrixJSON, len(releases))
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
