package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type setting struct {
	name string
	help string
}

var settings = []setting{
	{"BOOTSTRAP_MAINCLASS", "Import path of the package whose Main(args []string) is run. (Required.)"},
	{"BOOTSTRAP_LIBDIR", "Root directories scanned for package archives. (Default is current directory.)"},
	{"BOOTSTRAP_RESOURCEDIR", "Additional directories added to the resolution context. (Optional.)"},
	{"BOOTSTRAP_ARCHIVE_SUFFIX", "Suffix of package archives. (Default is .zip.)"},
	{"BOOTSTRAP_CONFIG", "YAML file with the settings above. (Default is ./bootstrap.yaml.)"},
	{"BOOTSTRAP_DEBUG", "Log each launch step. (Optional.)"},
	{"BOOTSTRAP_LOG_FILE", "Append log lines to this file instead of stderr. (Optional.)"},
}

// usage renders the usage instructions for w; styling is dropped when w is
// not a terminal.
func usage(w io.Writer) string {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	name := r.NewStyle().Foreground(lipgloss.Color("6")).Width(26)

	var b strings.Builder
	fmt.Fprintln(&b, heading.Render("Example usage:"))
	fmt.Fprintln(&b, "    BOOTSTRAP_MAINCLASS=example.com/app bootstrap <arguments>")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, heading.Render("Settings:"))
	for _, s := range settings {
		fmt.Fprintf(&b, "    %s%s\n", name.Render(s.name), s.help)
	}
	fmt.Fprintln(&b)
	return b.String()
}
