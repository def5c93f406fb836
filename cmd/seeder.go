package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the initial admin and a default event",
	Long:  `Creates the configured admin account when no active admin exists and a default event when there are none. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.DB.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		admin := deps.Config.Security.InitialAdmin
		created, err := deps.Services.Users.EnsureAdmin(ctx, admin)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		if created {
			deps.Logger.Info("seeded admin user", "username", admin.Username)
		} else {
			deps.Logger.Info("admin user already exists; skipping")
		}

		ev, created, err := deps.Services.Events.EnsureDefault(ctx, time.Now().In(deps.Config.Attendance.Location()))
		if err != nil {
			return fmt.Errorf("failed to seed default event: %w", err)
		}
		if created {
			deps.Logger.Info("seeded default event", "event_id", ev.ID, "name", ev.Name)
		}
		return nil
	},
}
