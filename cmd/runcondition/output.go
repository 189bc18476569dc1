package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/runcondition/internal/presentation/tui"
	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
	"golang.org/x/term"
)

// outputMode selects how a decision is printed.
type outputMode struct {
	JSON    bool
	Explain bool
	Color   bool
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type decisionOutput struct {
	Condition domain.Condition `json:"condition"`
	condition.Decision
}

func printDecision(w io.Writer, cond domain.Condition, d condition.Decision, mode outputMode) error {
	switch {
	case mode.JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(decisionOutput{Condition: cond, Decision: d})

	case mode.Explain:
		md := tui.ExplainMarkdown(cond, d)
		if mode.Color {
			rendered, err := tui.NewRenderer()(md)
			if err == nil {
				md = rendered
			}
		}
		_, err := fmt.Fprint(w, md)
		return err

	default:
		_, err := fmt.Fprintln(w, tui.Verdict(d.Result, mode.Color))
		return err
	}
}

func resultErr(result bool) error {
	if result {
		return nil
	}
	return errNotHolds
}
