package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Print the focus digest for a project",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectName, _ := cmd.Flags().GetString("project")
		days, _ := cmd.Flags().GetInt("days")
		buildingFlag, _ := cmd.Flags().GetString("building")
		asJSON, _ := cmd.Flags().GetBool("json")

		var building *string
		if b := strings.TrimSpace(buildingFlag); b != "" {
			building = &b
		}

		pack, digest, err := svc.Assistant.FocusDigest(ctx, projectName, days, building)
		if err != nil {
			return errs.Wrap(err, "build focus digest")
		}

		if asJSON {
			raw, err := json.MarshalIndent(pack, "", "  ")
			if err != nil {
				return errs.Wrap(err, "encode focus pack")
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw)); err != nil {
				return errs.Wrap(err, "write focus output")
			}
			return nil
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), digest); err != nil {
			return errs.Wrap(err, "write focus output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(focusCmd)
	focusCmd.Flags().String("project", "", "Project name (default project when empty)")
	focusCmd.Flags().Int("days", 0, "Time window in days (config default when 0)")
	focusCmd.Flags().String("building", "", "Restrict to one building, e.g. 1栋")
	focusCmd.Flags().Bool("json", false, "Print the raw focus pack as JSON")
}
