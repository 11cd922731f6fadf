package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/config"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskmatectl",
		Short:         "Operational commands for the TaskMate service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return logger.Initialize(logger.Config{
				Level:       level,
				Environment: "development",
				ServiceName: "taskmatectl",
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepOverdueCmd())
	rootCmd.AddCommand(sendReminderCmd())
	rootCmd.AddCommand(pruneVerificationLogsCmd())
	rootCmd.AddCommand(verificationHistoryCmd())
	rootCmd.AddCommand(reminderHistoryCmd())
	rootCmd.AddCommand(confirmationStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig()
}
