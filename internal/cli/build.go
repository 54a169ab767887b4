// internal/cli/build.go
package winnow

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/winnow/internal/bundle"
	"github.com/mwiater/winnow/internal/util"
)

type buildOptions struct {
	reportPath string
}

var buildOpts buildOptions

// buildCmd rebuilds the publishable bundle from a source bundle,
// truncating every log to the configured sample target.
var buildCmd = &cobra.Command{
	Use:   "build [source] [output]",
	Short: "Build a sampled copy of an evaluation-log bundle",
	Long: `Copy the static viewer files from the source bundle into the output
directory and rewrite every logs/*.json so it carries at most the
configured number of samples. The logs/logs.json index is rebuilt from
the truncated documents, and the output directory is replaced atomically
once the whole build has succeeded.

Source and output default to the configured directories when omitted.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := activeConfig()
		source := cfg.SourceDirPath()
		output := cfg.OutputDirPath()
		if len(args) > 0 {
			source = args[0]
		}
		if len(args) > 1 {
			output = args[1]
		}

		result, err := bundle.Build(source, output, bundle.Options{
			SampleTarget: cfg.SampleTarget(),
			Seed:         cfg.RandomSeed(),
		})
		if err != nil {
			return err
		}

		if DebugEnabled() {
			pp.Println(result)
		}

		renderBuildResult(cmd.OutOrStdout(), result)

		if buildOpts.reportPath != "" {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("unable to marshal build report: %w", err)
			}
			if err := util.WriteFile(buildOpts.reportPath, data); err != nil {
				return fmt.Errorf("unable to write build report %s: %w", buildOpts.reportPath, err)
			}
			cmd.Printf("Build report written to %s\n", buildOpts.reportPath)
		}

		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildOpts.reportPath, "report", "", "Optional path to write the build summary as JSON")
	rootCmd.AddCommand(buildCmd)
}

// renderBuildResult prints a per-file summary of a finished build.
// Sampled files are marked with '*'.
func renderBuildResult(out io.Writer, result *bundle.Result) {
	headerStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1)

	header := fmt.Sprintf("%s -> %s (target %d, seed %d)", result.SourceDir, result.OutputDir, result.SampleTarget, result.Seed)
	fmt.Fprintln(out, headerStyle.Render(header))

	fmt.Fprintf(out, "  %-28s %9s %6s %12s %12s\n", "FILE", "SAMPLES", "KEPT", "BYTES IN", "BYTES OUT")
	for _, file := range result.Files {
		marker := " "
		if file.Sampled {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-28s %9d %6d %12s %12s\n",
			marker, file.Name, file.OriginalSamples, file.KeptSamples,
			util.HumanBytes(file.BytesIn), util.HumanBytes(file.BytesOut))
	}

	fmt.Fprintf(out, "\n%d log file(s), %s in, %s out\n",
		len(result.Files), util.HumanBytes(result.TotalBytesIn), util.HumanBytes(result.TotalBytesOut))
}
