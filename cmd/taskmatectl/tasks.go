package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/app"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

func openStack(ctx context.Context) (*app.Stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, app.Options{})
}

func sweepOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Persist overdue status for open tasks past their deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			n, err := stack.Tasks.SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d task(s) overdue\n", n)
			return nil
		},
	}
}

func sendReminderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-reminder [task-id] [type]",
		Short: "Send a deadline reminder (24_hours_before, deadline, 24_hours_after) at most once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			reminderType := models.ReminderType(args[1])
			if !reminderType.Valid() {
				return fmt.Errorf("unknown reminder type %q", args[1])
			}

			stack, err := openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			alreadySent, err := stack.Reminders.SendReminder(cmd.Context(), taskID, reminderType)
			if err != nil {
				return err
			}
			if alreadySent {
				fmt.Fprintln(cmd.OutOrStdout(), "Reminder already sent")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reminder sent")
			return nil
		},
	}
}

func pruneVerificationLogsCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune-verification-logs",
		Short: "Delete verification log entries older than the given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			stack, err := openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			n, err := stack.VerifyLogs.DeleteOlderThan(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d log entr(ies)\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Minimum age of entries to delete")

	return cmd
}

func verificationHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verification-history [user-id]",
		Short: "List the verification emails sent to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			stack, err := openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			logs, err := stack.VerifyLogs.ListByUser(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range logs {
				verified := "-"
				if l.VerifiedAt != nil {
					verified = l.VerifiedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%s  sent=%s  verified=%s  ip=%s  email=%s\n",
					l.ID, l.CreatedAt.Format(time.RFC3339), verified, l.IPAddress, l.Email)
			}
			if len(logs) == 0 {
				fmt.Fprintln(out, "no verification emails sent")
			}
			return nil
		},
	}
}


func reminderHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reminder-history [task-id]",
		Short: "List the reminders recorded for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			stack, err := openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			records, err := stack.ReminderLog.ListByTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range records {
				fmt.Fprintf(out, "%-16s  sent=%s  to=%s\n",
					r.ReminderType, r.SentAt.Format(time.RFC3339), r.RecipientEmail)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "no reminders sent")
			}
			return nil
		},
	}
}

func confirmationStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirmation-status [token]",
		Short: "Show the task and state behind a partner confirmation token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("token is required")
			}

			stack, err := openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			c, err := stack.Confirms.GetByToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			state := "pending"
			if c.ConfirmedAt != nil {
				state = "confirmed " + c.ConfirmedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task=%s  created=%s  %s\n",
				c.TaskID, c.CreatedAt.Format(time.RFC3339), state)
			return nil
		},
	}
}
