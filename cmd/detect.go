package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/output"
	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// newDetectCmd creates the 'detect' subcommand. It runs a single detection
// cycle and writes the automation outputs, which is the mode CI schedules.
func newDetectCmd() *cobra.Command {
	var (
		force      bool
		outputFile string
		issuesDir  string
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Runs one release detection cycle",
		Long: `Checks the configured sources for new Windows 11 releases, updates the
tracking set, and writes key=value outputs (plus the build matrix) for the
calling workflow. Respects the global cooldown unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if outputFile == "" {
				outputFile = a.cfg.Detector.OutputFile
			}

			result, err := a.engine.Detect(cmd.Context(), force)
			if err != nil {
				return fmt.Errorf("detection cycle: %w", err)
			}

			if result.Skipped {
				a.log.Info("cycle skipped by cooldown")
			} else {
				a.log.Info("cycle completed",
					zap.Int("new_releases", len(result.NewReleases)),
					zap.Int("check_count", result.CheckCount),
				)
			}

			matrix := release.BuildMatrix(result.NewReleases)
			if err := output.WriteActions(outputFile, result.NewReleases, matrix); err != nil {
				return fmt.Errorf("write outputs: %w", err)
			}

			if issuesDir != "" && len(result.NewReleases) > 0 {
				if err := writeIssues(issuesDir, result.NewReleases); err != nil {
					return fmt.Errorf("write issue payloads: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the cooldown gate")
	cmd.Flags().StringVar(&outputFile, "output", "", "path for key=value outputs (defaults to detector.output_file)")
	cmd.Flags().StringVar(&issuesDir, "issues-dir", "", "directory to write per-release issue payloads into")
	return cmd
}

func writeIssues(dir string, releases []release.Release) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create issues dir: %w", err)
	}
	for _, r := range releases {
		issue := output.NewReleaseIssue(r)
		data, err := json.MarshalIndent(issue, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal issue for %s: %w", r.BuildID, err)
		}
		path := filepath.Join(dir, r.BuildID+".json")
		if err := os.WriteFile(path, data, 0o640); err != nil {
			return fmt.Errorf("write issue for %s: %w", r.BuildID, err)
		}
	}
	return nil
}
