package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ExplainMarkdown formats a decision as a markdown report with one table row per cause.
func ExplainMarkdown(cond domain.Condition, d condition.Decision) string {
	var sb strings.Builder

	title := string(cond.Matcher) + " condition"
	if cond.ID != "" {
		title = cond.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	filter := cond.Filter
	if filter == "" {
		filter = "*any*"
	} else {
		filter = "`" + filter + "`"
	}
	fmt.Fprintf(&sb, "- **Matcher:** %s\n", cond.Matcher)
	fmt.Fprintf(&sb, "- **Filter:** %s\n", filter)
	fmt.Fprintf(&sb, "- **Exclusive:** %t\n\n", cond.Exclusive)

	if len(d.Verdicts) == 0 {
		sb.WriteString("_No causes recorded._\n\n")
	} else {
		sb.WriteString("| # | Cause | Relevant | Matched |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, v := range d.Verdicts {
			fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n",
				v.Index+1, escapeCell(v.Cause.ShortDescription()), mark(v.Relevant), mark(v.Matched))
		}
		sb.WriteString("\n")
	}

	outcome := "SKIP"
	if d.Result {
		outcome = "RUN"
	}
	fmt.Fprintf(&sb, "**Result:** %s (%s)\n", outcome, d.Reason)
	return sb.String()
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
