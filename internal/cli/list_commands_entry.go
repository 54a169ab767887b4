// internal/cli/list_commands_entry.go
package winnow

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandRow pairs a command path with its short description for the
// two-column listing.
type commandRow struct {
	path  string
	short string
}

// runListCommands prints the command tree in a two-column layout. The
// auto-generated completion and help subtrees are left out.
func runListCommands(out io.Writer, root *cobra.Command) {
	rows := walkCommands(root, "", 0)

	width := 0
	for _, row := range rows {
		if len(row.path) > width {
			width = len(row.path)
		}
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, row := range rows {
		fmt.Fprintf(out, "  %s%s%s\n", row.path, strings.Repeat(" ", width-len(row.path)+2), row.short)
	}
}

// walkCommands flattens the command tree into display rows, indenting
// each level by two spaces and carrying the full command path.
func walkCommands(cmd *cobra.Command, parentPath string, depth int) []commandRow {
	path := cmd.Name()
	if parentPath != "" {
		path = parentPath + " " + cmd.Name()
	}

	rows := []commandRow{{
		path:  strings.Repeat("  ", depth) + path,
		short: cmd.Short,
	}}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" || sub.Name() == "help" {
			continue
		}
		rows = append(rows, walkCommands(sub, path, depth+1)...)
	}

	return rows
}
