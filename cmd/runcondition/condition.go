package main

import (
	"context"
	"fmt"

	"github.com/aretw0/runcondition/pkg/adapters/loam"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/spf13/cobra"
)

// conditionRef is either a persisted condition ID or an inline condition.
type conditionRef struct {
	ID     string
	Inline domain.Condition
}

func addConditionFlags(cmd *cobra.Command) {
	cmd.Flags().String("condition", "", "ID of a condition document in --dir")
	cmd.Flags().String("matcher", "user", "Inline condition matcher (when --condition is not set)")
	cmd.Flags().String("filter", "", "Inline condition filter")
	cmd.Flags().Bool("exclusive", false, "Inline condition exclusive flag")
}

func conditionFromFlags(cmd *cobra.Command) conditionRef {
	id, _ := cmd.Flags().GetString("condition")
	matcher, _ := cmd.Flags().GetString("matcher")
	filter, _ := cmd.Flags().GetString("filter")
	exclusive, _ := cmd.Flags().GetBool("exclusive")
	return conditionRef{
		ID: id,
		Inline: domain.Condition{
			Matcher:   domain.MatcherKind(matcher),
			Filter:    filter,
			Exclusive: exclusive,
		},
	}
}

// openLoader opens the condition documents in dir only when a persisted condition is referenced.
func openLoader(dir string, ref conditionRef) (ports.ConditionLoader, error) {
	if ref.ID == "" {
		return nil, nil
	}
	l, err := loam.Open(dir)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func resolveCondition(ctx context.Context, loader ports.ConditionLoader, ref conditionRef) (domain.Condition, error) {
	if ref.ID == "" {
		return ref.Inline, nil
	}
	if loader == nil {
		return domain.Condition{}, fmt.Errorf("no condition loader for %s", ref.ID)
	}
	return loader.GetCondition(ctx, ref.ID)
}
