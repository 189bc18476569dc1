package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	Condition domain.Condition
	Causes    []string
	Output    outputMode
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a condition against causes given on the command line",
	Long: `Evaluates a user or upstream condition against an ordered list of causes.

Causes use the compact form: user:fred, user (SYSTEM), upstream:project#12,
remote:host:note, timer, legacy. Any other kind is kept and never matches.

Exits 0 when the condition holds and 2 when it does not.`,
	Example: `  runcondition evaluate --matcher user --filter fred,tom --cause remote:host --cause user:tom`,
	RunE: func(cmd *cobra.Command, args []string) error {
		matcher, _ := cmd.Flags().GetString("matcher")
		filter, _ := cmd.Flags().GetString("filter")
		exclusive, _ := cmd.Flags().GetBool("exclusive")
		causes, _ := cmd.Flags().GetStringArray("cause")
		explain, _ := cmd.Flags().GetBool("explain")
		asJSON, _ := cmd.Flags().GetBool("json")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		return runEvaluate(cmd.Context(), out, logger, evaluateOptions{
			Condition: domain.Condition{
				Matcher:   domain.MatcherKind(matcher),
				Filter:    filter,
				Exclusive: exclusive,
			},
			Causes: causes,
			Output: outputMode{JSON: asJSON, Explain: explain, Color: isTerminal(out)},
		})
	},
}

func runEvaluate(ctx context.Context, out io.Writer, logger *slog.Logger, opts evaluateOptions) error {
	causes, err := domain.ParseCauses(opts.Causes)
	if err != nil {
		return err
	}

	gate := runcondition.New(runcondition.WithLogger(logger))
	d, err := gate.Explain(ctx, opts.Condition, causes)
	if err != nil {
		return err
	}

	if err := printDecision(out, opts.Condition, d, opts.Output); err != nil {
		return err
	}
	return resultErr(d.Result)
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("matcher", "user", "Cause kind to inspect: user or upstream")
	evaluateCmd.Flags().String("filter", "", "Comma separated user ids or upstream projects (empty accepts any)")
	evaluateCmd.Flags().Bool("exclusive", false, "Require exactly one cause")
	evaluateCmd.Flags().StringArray("cause", nil, "Build cause in compact form (repeatable, order preserved)")
	evaluateCmd.Flags().Bool("explain", false, "Print a per-cause report")
	evaluateCmd.Flags().Bool("json", false, "Print the decision as JSON")
}
