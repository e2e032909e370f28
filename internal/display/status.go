// Package display renders CLI-facing output: colored status lines,
// indexing progress, and call-tree visualizations.
package display

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	labelColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.Faint)
	countColor = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
)

// Label formats a field name for a status line.
func Label(s string) string { return labelColor.Sprint(s) }

// DimText de-emphasizes secondary detail (paths, URLs).
func DimText(s string) string { return dimColor.Sprint(s) }

// CountText highlights a numeric count.
func CountText(n int) string { return countColor.Sprint(n) }

// Warn formats a non-fatal diagnostic (a parse error, an unresolved
// reference) for status output.
func Warn(format string, args ...any) string {
	return warnColor.Sprintf(format, args...)
}

// Err formats a fatal error for CLI output.
func Err(format string, args ...any) string {
	return errColor.Sprintf(format, args...)
}

// IndexSummary is what `codegraph status` and the tail of `codegraph
// index` print after a pass completes.
type IndexSummary struct {
	ProjectRoot  string
	Files        int
	Nodes        int
	Edges        int
	Embeddings   int
	ParseErrors  int
	Unresolved   int
}

// PrintIndexSummary renders one summary in the teacher's label/value
// column layout.
func PrintIndexSummary(s IndexSummary) {
	fmt.Printf("%s   %s\n", Label("Project:"), DimText(s.ProjectRoot))
	fmt.Printf("  Files:       %s\n", CountText(s.Files))
	fmt.Printf("  Symbols:     %s\n", CountText(s.Nodes))
	fmt.Printf("  Edges:       %s\n", CountText(s.Edges))
	fmt.Printf("  Embeddings:  %s\n", CountText(s.Embeddings))
	if s.ParseErrors > 0 {
		fmt.Printf("  Parse errors:%s\n", Warn(" %d", s.ParseErrors))
	}
	if s.Unresolved > 0 {
		fmt.Printf("  Unresolved:  %s\n", Warn("%d", s.Unresolved))
	}
}
