package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/usecase/backfill"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Re-parse region text on rows missing building/floor",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectName, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = backfill.DefaultLimit
		}

		projectID, err := svc.Records.ResolveProjectID(ctx, 0, projectName)
		if err != nil {
			return errs.Wrap(err, "resolve project")
		}

		result, err := svc.Backfill.Run(ctx, projectID, limit)
		if err != nil {
			return errs.Wrap(err, "run backfill")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "backfill done: acceptance=%d issues=%d\n",
			result.UpdatedAcceptance, result.UpdatedIssues); err != nil {
			return errs.Wrap(err, "write backfill output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().String("project", "", "Project name (default project when empty)")
	backfillCmd.Flags().Int("limit", backfill.DefaultLimit, "Max rows per table to scan")
}
