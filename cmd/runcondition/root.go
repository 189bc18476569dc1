package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/runcondition/internal/logging"
	"github.com/spf13/cobra"
)

// Exit codes of the evaluate, check and matrix commands.
const (
	exitHolds    = 0
	exitError    = 1
	exitNotHolds = 2
)

// errNotHolds signals a successful evaluation whose condition did not hold.
var errNotHolds = errors.New("condition does not hold")

var rootCmd = &cobra.Command{
	Use:           "runcondition",
	Short:         "runcondition decides whether a build should run from its causes",
	Long:          `runcondition evaluates user and upstream cause conditions against the causes that triggered a build.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitHolds
	case errors.Is(err, errNotHolds):
		return exitNotHolds
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}
}

// newLogger builds the command logger from the persistent --log-level flag.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	lvl, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(lvl)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing condition documents")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
}
