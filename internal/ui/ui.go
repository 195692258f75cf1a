package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/g30r93g/PRereq/internal/models"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	SuccessEmoji = "✅"
	ErrorEmoji   = "❌"
	NeutralEmoji = "➖"
	WarningEmoji = "⚠️"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━"

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", ErrorEmoji, Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, Info.Sprint(msg))
}

func PrintSectionBanner(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "%s\n%s\n%s\n", Dim.Sprint(separator), Accent.Sprint(title), Dim.Sprint(separator))
}

// PrintVerdict renders a verdict the way the check run shows it: the
// conclusion, the title as heading and the summary body.
func PrintVerdict(w io.Writer, ref models.PRRef, v models.Verdict) {
	emoji, c := conclusionStyle(v.Conclusion)
	_, _ = fmt.Fprintf(w, "%s %s %s\n", emoji, c.Sprint(string(v.Conclusion)), Dim.Sprint(ref.String()))
	PrintSectionBanner(w, v.Title)
	_, _ = fmt.Fprintln(w, v.Summary)
}

func PrintRefs(w io.Writer, refs []models.PRRef) {
	for _, r := range refs {
		_, _ = fmt.Fprintln(w, r.String())
	}
}

func PrintEdges(w io.Writer, edges []models.Edge) {
	for _, e := range edges {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", e.Dependent, Dim.Sprint("→"), e.Dependency)
	}
}

func conclusionStyle(c models.Conclusion) (string, *color.Color) {
	switch c {
	case models.ConclusionSuccess:
		return SuccessEmoji, Success
	case models.ConclusionFailure:
		return ErrorEmoji, Error
	default:
		return NeutralEmoji, Warning
	}
}
