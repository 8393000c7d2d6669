package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var profileID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard of a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileID == "" {
				return fmt.Errorf("--profile is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, log.New(os.Stderr, "INFO: ", log.LstdFlags))
			if err != nil {
				return err
			}
			defer app.close()

			profile, err := app.profiles.GetProfileByID(cmd.Context(), profileID)
			if err != nil {
				return fmt.Errorf("profile %s: %w", profileID, err)
			}
			role, err := app.workflow.ForSession(models.Session{UserID: profile.UserID, Profile: *profile})
			if err != nil {
				return err
			}
			stats, err := role.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			renderStats(os.Stdout, profile, stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&profileID, "profile", "", "profile id")
	return cmd
}

func renderStats(out io.Writer, profile *models.Profile, stats *models.DashboardStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetTitle(fmt.Sprintf("%s (%s)", profile.FullName, profile.Role))
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRow(table.Row{"Active jobs", stats.ActiveJobs})
	tw.AppendRow(table.Row{"Completed jobs", stats.CompletedJobs})
	tw.AppendRow(table.Row{"Pending proposals", stats.PendingProposals})
	if stats.TotalSpent != nil {
		tw.AppendRow(table.Row{"Total spent", *stats.TotalSpent})
	}
	if stats.TotalEarnings != nil {
		tw.AppendRow(table.Row{"Total earnings", *stats.TotalEarnings})
	}
	tw.Render()
}
