package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm prints a warning and asks a yes/no question on in/out. Anything
// other than y or yes is treated as no.
func Confirm(in io.Reader, out io.Writer, title, question string) bool {
	fmt.Fprintln(out, WarningTitleStyle.Render(fmt.Sprintf("%s  %s", WarningMarker, title)))

	prompt := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	fmt.Fprint(out, prompt.Render(question+" [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		fmt.Fprintln(out, MutedStyle.Render("  Operation cancelled."))
		return false
	}
}
