package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depcollect/pkg/collect"
)

// uiOut receives status lines. Reports go to the command's stdout, so
// status output stays on stderr where it cannot corrupt piped results.
var uiOut io.Writer = os.Stderr

// Palette, by role.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

const iconArrow = "→"

// statusKind selects the icon and color of a status line.
type statusKind int

const (
	statusOK statusKind = iota
	statusFail
	statusWarn
	statusInfo
)

var statusIcons = [...]struct {
	icon  string
	color lipgloss.Color
}{
	statusOK:   {"✓", colorOK},
	statusFail: {"✗", colorFail},
	statusWarn: {"!", colorWarn},
	statusInfo: {"›", colorMuted},
}

func (k statusKind) icon() string {
	s := statusIcons[k]
	return lipgloss.NewStyle().Foreground(s.color).Render(s.icon)
}

func printStatus(k statusKind, format string, args ...any) {
	fmt.Fprintln(uiOut, k.icon()+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printStatus(statusOK, format, args...) }
func printError(format string, args ...any)   { printStatus(statusFail, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written file.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printSummary prints the counts of a collection on a single line, with
// downgrades called out since they usually need attention.
func printSummary(res *collect.Result) {
	parts := []string{
		fmt.Sprintf("%d dependencies", len(res.Dependencies)),
		fmt.Sprintf("depth %d", res.Graph.MaxRow()),
	}
	downgrades := 0
	for _, c := range res.Conflicts {
		if c.Kind == collect.ConflictDowngrade {
			downgrades++
		}
	}
	if n := len(res.Conflicts); n > 0 {
		parts = append(parts, fmt.Sprintf("%d omitted", n))
	}

	line := "  " + StyleDim.Render(strings.Join(parts, " · "))
	if downgrades > 0 {
		line += StyleDim.Render(" · ") + statusWarn.icon() + " " +
			StyleWarning.Render(fmt.Sprintf("%d downgraded", downgrades))
	}
	fmt.Fprintln(uiOut, line)
}
