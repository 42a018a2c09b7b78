package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/usecase/dashconsole"
)

var consoleDashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Start the quality dashboard console",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		projectName, _ := cmd.Flags().GetString("project")
		days, _ := cmd.Flags().GetInt("days")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 10 * time.Second
		}

		model := dashconsole.NewDashModel(ctx, svc.Records, svc.Analytics, dashconsole.Options{
			ProjectName:     projectName,
			Days:            days,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run dashboard console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleDashCmd)
	consoleDashCmd.Flags().String("project", "", "Project name (default project when empty)")
	consoleDashCmd.Flags().Int("days", 0, "Focus window in days (config default when 0)")
	consoleDashCmd.Flags().Duration("refresh-interval", 10*time.Second, "Auto refresh interval")
}
