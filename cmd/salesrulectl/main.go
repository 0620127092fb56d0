package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-sales-rules/internal/config"
	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/infra/database"
	"github.com/KasumiMercury/primind-sales-rules/internal/infra/repository"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/deadline"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/reminder"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "salesrulectl",
		Short:         "Offline tools for sales timeliness rules",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(deadlineCmd())
	rootCmd.AddCommand(reminderCmd())
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

func deadlineCmd() *cobra.Command {
	var (
		value   float64
		unit    string
		nowStr  string
		lenient bool
	)

	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Compute a first-response deadline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if nowStr != "" {
				parsed, err := time.Parse(time.RFC3339Nano, nowStr)
				if err != nil {
					return fmt.Errorf("invalid --now, expected RFC3339: %w", err)
				}
				now = parsed
			}

			at, err := deadline.NewCalculator(lenient).ComputeDeadline(value, domain.FollowUpUnit(unit), now)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatTimestamp(at))
			return nil
		},
	}

	cmd.Flags().Float64Var(&value, "value", 0, "time limit value")
	cmd.Flags().StringVar(&unit, "unit", string(domain.FollowUpMinutes), "time limit unit (分钟内, 小时内, 天内)")
	cmd.Flags().StringVar(&nowStr, "now", "", "reference instant in RFC3339 (default: current time)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "treat unknown units as zero instead of failing")
	return cmd
}

func reminderCmd() *cobra.Command {
	var (
		value         float64
		unit          string
		recyclingDays float64
	)

	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Check a timeout-warning lead time against the recycling window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if msg := reminder.ValidateReminder(value, domain.ReminderUnit(unit), recyclingDays); msg != nil {
				fmt.Fprintln(cmd.OutOrStdout(), msg.Message)
				return errors.New("lead time exceeds recycling window")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().Float64Var(&value, "value", 0, "lead time value")
	cmd.Flags().StringVar(&unit, "unit", string(domain.ReminderHours), "lead time unit (小时前, 分钟前, 天前)")
	cmd.Flags().Float64Var(&recyclingDays, "recycling-days", 0, "customer recycling window in days")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the customers rule columns (uses DATABASE_URL)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := repository.AutoMigrate(ctx, db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
