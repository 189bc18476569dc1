package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/internal/presentation/graph"
	"github.com/aretw0/runcondition/internal/presentation/tui"
	"github.com/aretw0/runcondition/pkg/matrix"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/spf13/cobra"
)

type matrixOptions struct {
	BuildFile string
	Condition conditionRef
	Axes      []string
	Graph     bool
	JSON      bool
	Color     bool
}

var matrixCmd = &cobra.Command{
	Use:   "matrix <build.yaml>",
	Short: "Evaluate a condition for every run of a matrix build",
	Long: `Expands the build's axes into matrix runs and evaluates the condition for each.
Every run carries the causes of the parent build.

Axes come from the build file or from repeated --axis name=v1,v2 flags, which replace them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		axes, _ := cmd.Flags().GetStringArray("axis")
		asGraph, _ := cmd.Flags().GetBool("graph")
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
		return runMatrix(cmd.Context(), out, logger, loader, matrixOptions{
			BuildFile: args[0],
			Condition: ref,
			Axes:      axes,
			Graph:     asGraph,
			JSON:      asJSON,
			Color:     isTerminal(out),
		})
	},
}

func runMatrix(ctx context.Context, out io.Writer, logger *slog.Logger, loader ports.ConditionLoader, opts matrixOptions) error {
	f, err := loadBuildFile(opts.BuildFile)
	if err != nil {
		return err
	}
	parent, err := f.Build()
	if err != nil {
		return err
	}

	axes := f.Axes
	if len(opts.Axes) > 0 {
		axes = make(matrix.AxisList, 0, len(opts.Axes))
		for _, s := range opts.Axes {
			a, err := matrix.ParseAxis(s)
			if err != nil {
				return err
			}
			axes = append(axes, a)
		}
	}

	if len(axes) == 0 {
		return fmt.Errorf("build %s has no matrix axes", parent.ID)
	}

	cond, err := resolveCondition(ctx, loader, opts.Condition)
	if err != nil {
		return err
	}

	gate := runcondition.New(runcondition.WithLogger(logger))
	runs, err := gate.EvaluateMatrix(ctx, cond, parent, axes)
	if err != nil {
		return err
	}

	switch {
	case opts.JSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			return err
		}
	case opts.Graph:
		fmt.Fprint(out, graph.GenerateMermaid(parent, runs))
	default:
		for _, r := range runs {
			fmt.Fprintln(out, verdictLine(r.Result, opts.Color, r.BuildID))
		}
	}

	for _, r := range runs {
		if !r.Result {
			return errNotHolds
		}
	}
	return nil
}

func verdictLine(result, color bool, buildID string) string {
	return fmt.Sprintf("%s %s", tui.Verdict(result, color), buildID)
}

func init() {
	rootCmd.AddCommand(matrixCmd)

	addConditionFlags(matrixCmd)
	matrixCmd.Flags().StringArray("axis", nil, "Matrix axis as name=v1,v2 (repeatable)")
	matrixCmd.Flags().Bool("graph", false, "Print a Mermaid diagram of the runs")
	matrixCmd.Flags().Bool("json", false, "Print the run decisions as JSON")
}
