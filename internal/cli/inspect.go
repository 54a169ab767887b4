// internal/cli/inspect.go
package winnow

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/winnow/internal/survey"
	"github.com/mwiater/winnow/internal/util"
)

// inspectCmd surveys a bundle without modifying it, reporting per-file
// sample counts and the sizes a build at the current target would produce.
var inspectCmd = &cobra.Command{
	Use:   "inspect [bundle]",
	Short: "Survey a bundle's log files without modifying them",
	Long: `Walk the logs directory of a bundle and report, for every log file, the
actual sample count, the count the document declares for itself, and the
raw and gzip-compressed sizes. Files whose declared count disagrees with
the samples array are marked with '!'.

The bundle defaults to the configured source directory when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := activeConfig()
		dir := cfg.SourceDirPath()
		if len(args) > 0 {
			dir = args[0]
		}

		report, err := survey.Scan(dir, cfg.SampleTarget())
		if err != nil {
			return err
		}

		if DebugEnabled() {
			pp.Println(report)
		}

		renderSurveyReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// renderSurveyReport prints one row per log file plus a totals line.
func renderSurveyReport(out io.Writer, report *survey.Report) {
	headerStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1)

	header := fmt.Sprintf("%s (sample target %d)", report.BundleDir, report.SampleTarget)
	fmt.Fprintln(out, headerStyle.Render(header))

	fmt.Fprintf(out, "  %-28s %9s %10s %6s %12s %12s\n", "FILE", "SAMPLES", "DECLARED", "KEEP", "RAW", "GZIP")
	for _, file := range report.Files {
		marker := " "
		if file.Mismatch {
			marker = "!"
		}
		fmt.Fprintf(out, "%s %-28s %9d %10d %6d %12s %12s\n",
			marker, file.Name, file.Samples, file.DeclaredSamples, file.KeptAtTarget,
			util.HumanBytes(file.RawBytes), util.HumanBytes(file.GzipBytes))
	}

	fmt.Fprintf(out, "\n%d log file(s), %d samples (%d kept at target), %s raw, %s gzipped\n",
		len(report.Files), report.TotalSamples, report.TotalKept,
		util.HumanBytes(report.TotalRawBytes), util.HumanBytes(report.TotalGzipBytes))
}
