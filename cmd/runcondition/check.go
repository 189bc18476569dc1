package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/pkg/adapters/memory"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	BuildFile string
	Condition conditionRef
	Output    outputMode
}

var checkCmd = &cobra.Command{
	Use:   "check <build.yaml>",
	Short: "Check whether a recorded build satisfies a condition",
	Long: `Loads a build description and evaluates a condition against its causes.
The condition is either a document in --dir (--condition) or given inline.

Exits 0 when the condition holds and 2 when it does not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		explain, _ := cmd.Flags().GetBool("explain")
		asJSON, _ := cmd.Flags().GetBool("json")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		ref := conditionFromFlags(cmd)
		loader, err := openLoader(dir, ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		return runCheck(cmd.Context(), out, logger, loader, checkOptions{
			BuildFile: args[0],
			Condition: ref,
			Output:    outputMode{JSON: asJSON, Explain: explain, Color: isTerminal(out)},
		})
	},
}

func runCheck(ctx context.Context, out io.Writer, logger *slog.Logger, loader ports.ConditionLoader, opts checkOptions) error {
	f, err := loadBuildFile(opts.BuildFile)
	if err != nil {
		return err
	}
	build, err := f.Build()
	if err != nil {
		return err
	}

	store := memory.NewStore()
	if err := store.Save(ctx, build); err != nil {
		return err
	}

	gateOpts := []runcondition.Option{runcondition.WithSource(store), runcondition.WithLogger(logger)}
	if loader != nil {
		gateOpts = append(gateOpts, runcondition.WithConditions(loader))
	}
	gate := runcondition.New(gateOpts...)

	if opts.Condition.ID != "" && !opts.Output.JSON && !opts.Output.Explain {
		ok, err := gate.EvaluateNamed(ctx, opts.Condition.ID, build.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, verdictLine(ok, opts.Output.Color, build.ID))
		return resultErr(ok)
	}

	cond, err := resolveCondition(ctx, loader, opts.Condition)
	if err != nil {
		return err
	}
	causes, err := store.Causes(ctx, build.ID)
	if err != nil {
		return err
	}
	d, err := gate.Explain(ctx, cond, causes)
	if err != nil {
		return err
	}
	if err := printDecision(out, cond, d, opts.Output); err != nil {
		return err
	}
	return resultErr(d.Result)
}

func init() {
	rootCmd.AddCommand(checkCmd)

	addConditionFlags(checkCmd)
	checkCmd.Flags().Bool("explain", false, "Print a per-cause report")
	checkCmd.Flags().Bool("json", false, "Print the decision as JSON")
}
