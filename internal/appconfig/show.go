// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	show := cfg
	if show == nil {
		show = &fallback
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Samples:    %d\n", show.SampleTarget())
	fmt.Fprintf(out, "  Seed:       %d\n", show.RandomSeed())
	fmt.Fprintf(out, "  Source:     %s\n", show.SourceDirPath())
	fmt.Fprintf(out, "  Output:     %s\n", show.OutputDirPath())
	fmt.Fprintf(out, "  Preview:    %s\n", show.PreviewAddr())
	fmt.Fprintf(out, "  Debug:      %v\n", show.Debug)
	fmt.Fprintf(out, "  Log File:   %s\n", show.LogFilePath())
}
