package main

import (
	"log/slog"
	"os"

	"github.com/cottand/genres/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var logLevel int

var rootCmd = &cobra.Command{
	Use:   "genres [subcommand]",
	Short: "genres resolves generic types and flattens their members",
	Args:  cobra.MinimumNArgs(1),
	PersistentPreRun: func(*cobra.Command, []string) {
		cmd.SetLogLevel(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&logLevel, "log-level", "l", int(slog.LevelWarn), "log level")
	rootCmd.AddCommand(cmd.NewResolveCmd())
	rootCmd.AddCommand(cmd.NewHierarchyCmd())
	rootCmd.AddCommand(cmd.NewMembersCmd())
}
