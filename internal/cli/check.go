// internal/cli/check.go
package winnow

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/winnow/internal/bundle"
	"github.com/mwiater/winnow/internal/util"
	"github.com/mwiater/winnow/internal/verify"
)

var passMark = color.New(color.FgGreen).SprintFunc()
var failMark = color.New(color.FgRed).SprintFunc()

// checkCmd verifies that a built bundle is internally consistent and
// exits non-zero when it is not.
var checkCmd = &cobra.Command{
	Use:   "check [bundle]",
	Short: "Verify a built bundle's internal consistency",
	Long: `Validate every log file in a built bundle against the expected document
shape, confirm that the count fields agree with the samples each file
actually carries, and compare the logs/logs.json index against the log
files on disk. Problems are reported per file and the command exits
non-zero when any are found.

The bundle defaults to the configured output directory when omitted.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := activeConfig()
		dir := cfg.OutputDirPath()
		if len(args) > 0 {
			dir = args[0]
		}

		findings, err := verify.Check(dir)
		if err != nil {
			return err
		}

		if DebugEnabled() && len(findings) > 0 {
			pp.Println(findings)
		}

		names, err := bundle.ListLogFiles(filepath.Join(dir, "logs"))
		if err != nil {
			return err
		}

		renderFindings(cmd.OutOrStdout(), names, findings)

		if len(findings) > 0 {
			return fmt.Errorf("bundle failed verification with %d finding(s)", len(findings))
		}
		cmd.Printf("\n%s checks clean\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// renderFindings prints one status line per checked file, with details
// indented under the files that failed. The index and marker rows come
// last so per-file problems read top to bottom.
func renderFindings(out io.Writer, names []string, findings []verify.Finding) {
	byFile := make(map[string][]verify.Finding, len(findings))
	for _, finding := range findings {
		byFile[finding.File] = append(byFile[finding.File], finding)
	}

	for _, name := range names {
		printFileStatus(out, name, byFile[name])
	}
	printFileStatus(out, bundle.IndexFileName, byFile[bundle.IndexFileName])
	printFileStatus(out, bundle.MarkerFileName, byFile[bundle.MarkerFileName])
}

func printFileStatus(out io.Writer, name string, findings []verify.Finding) {
	if len(findings) == 0 {
		fmt.Fprintf(out, "%s %s\n", passMark("✓"), name)
		return
	}
	fmt.Fprintf(out, "%s %s\n", failMark("✗"), name)
	for _, finding := range findings {
		fmt.Fprintf(out, "    %s: %s\n", finding.Check, util.TruncateRunes(finding.Detail, 100))
	}
}
