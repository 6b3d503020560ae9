package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Run alert generation",
	Long: `Runs the alert checks for one user, or for every user who opted
into notifications.

Deduplication windows make reruns safe; an alert already sent within
its window is never created again.

Example:
  go run ./cmd/radar alerts --user 42
  go run ./cmd/radar alerts --all`,
	RunE: runAlerts,
}

var (
	alertsUserID int64
	alertsAll    bool
)

func init() {
	rootCmd.AddCommand(alertsCmd)

	alertsCmd.Flags().Int64Var(&alertsUserID, "user", 0, "user id to generate alerts for")
	alertsCmd.Flags().BoolVar(&alertsAll, "all", false, "sweep every notifiable user")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	if alertsUserID == 0 && !alertsAll {
		return fmt.Errorf("either --user or --all is required")
	}

	c, err := buildCore()
	if err != nil {
		return err
	}
	defer c.close()

	ctx := context.Background()

	if alertsAll {
		notifiable, err := c.userRepo.ListNotifiable(ctx)
		if err != nil {
			return fmt.Errorf("list notifiable users: %w", err)
		}

		var total int
		for _, user := range notifiable {
			created, err := c.generator.GenerateAll(ctx, user)
			if err != nil {
				c.log.WithError(err).WithField("user", user.ID).Warn("Alert generation failed for user")
				continue
			}
			total += len(created)
		}

		fmt.Printf("Swept %d users, created %d alerts\n", len(notifiable), total)
		return nil
	}

	user, err := c.userRepo.Get(ctx, alertsUserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", alertsUserID, err)
	}

	created, err := c.generator.GenerateAll(ctx, user)
	if err != nil {
		return fmt.Errorf("generate alerts: %w", err)
	}

	fmt.Printf("Created %d alerts for user %d\n", len(created), user.ID)
	for _, alert := range created {
		fmt.Printf("  [%s] %s\n", alert.Type, alert.Title)
	}

	return nil
}
