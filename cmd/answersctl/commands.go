package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aura-answers/backend/internal/auth"
	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/database"
	"github.com/aura-answers/backend/pkg/queue"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := e.pool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := database.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}

// newPromoteCmd changes a user's role. Registration only creates members, so
// this is how staff accounts come to exist.
func newPromoteCmd(e *env) *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set the role of a user",
		Example: `  answersctl promote --email ana@example.com --role staff
  answersctl promote --email ana@example.com --role member`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			if _, ok := models.ParseRole(role); !ok {
				return fmt.Errorf("unknown role %q (want admin, staff or member)", role)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := e.pool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			r, _ := models.ParseRole(role)
			if err := auth.NewRepository(pool).SetRole(ctx, email, r); err != nil {
				return fmt.Errorf("promote %s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account e-mail")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStaff), "Role to grant")
	return cmd
}

func newQueueCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect notification delivery queues",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show pending and dead-lettered job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rdb, err := e.redis(ctx)
			if err != nil {
				return err
			}
			defer rdb.Close()

			q := queue.NewQueue(rdb.Client, queue.Options{}, e.logger)
			for _, key := range []string{queue.QueueNotifications, queue.QueueDLQ} {
				n, err := q.Len(ctx, key)
				if err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", key, n)
			}
			return nil
		},
	})
	return cmd
}
