/*
Package runcondition decides whether a conditional build action should run, based on why the build started.

A build orchestration host records one or more causes against every build invocation: a user
started it, an upstream project's build triggered it, a timer fired, a remote call arrived.
A cause condition inspects that list and answers a single yes/no question, which the host uses
to gate a dependent build step.

# Concept

The evaluator is a pure function. The host ("Host") owns build records, scheduling and the
execution of build steps; it hands the evaluator the ordered cause list of one build and a
condition configuration, and receives a boolean back. This Hexagonal Architecture allows the
evaluator to be embedded in any interface: CLI, HTTP Server, or AI Agent infrastructure.

# Conditions

  - User condition: matches causes started by a user, optionally restricted to a comma separated list of user IDs.
  - Upstream condition: matches causes triggered by an upstream project, optionally restricted to a list of project IDs.
  - Exclusive: the build must have exactly one cause, and it must match.

Matrix builds evaluate every run against the cause list of the parent build, so every run of
one trigger reaches the same decision.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/runcondition"
		"github.com/aretw0/runcondition/pkg/domain"
	)

	func main() {
		gate := runcondition.New()

		ok, err := gate.Evaluate(context.Background(),
			domain.UserCondition("fred,tom", false),
			[]domain.Cause{domain.LegacyCause(), domain.UserCause("tom")},
		)
		if err != nil {
			panic(err)
		}
		fmt.Println(ok) // true
	}
*/
package runcondition
