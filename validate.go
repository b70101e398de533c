package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowlane/internal/diagram"
	"flowlane/internal/project"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Loads project files and checks their consistency",
	Long: `The validate command loads one or more project files and checks every
diagram in them: lane membership, pool heights, connection endpoints and
duplicate edges. It exits non-zero when an error is found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			ok, err := validateFile(cmd.OutOrStdout(), path)
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
			}
			if err != nil || !ok {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateFile reports every issue in a project file. It returns false when
// any diagram has an error-level issue.
func validateFile(w io.Writer, path string) (bool, error) {
	f, err := project.Load(path)
	if err != nil {
		return false, err
	}
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)

	ok := true
	for _, d := range f.Workspace() {
		s, err := diagram.LoadSnapshot(d.Snapshot)
		if err != nil {
			return false, err
		}
		issues := s.Check()
		if len(diagram.Errors(issues)) > 0 {
			ok = false
		}
		for _, issue := range issues {
			c := yellow
			if issue.Severity == diagram.SeverityError {
				c = red
			}
			c.Fprintf(w, "%s [%s] %s\n", path, d.Name, issue)
		}
	}
	if ok {
		green.Fprintf(w, "%s: ok\n", path)
	}
	return ok, nil
}
