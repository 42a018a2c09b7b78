package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
)

var normalizePhotosCmd = &cobra.Command{
	Use:   "normalize-photos",
	Short: "Rewrite stored photo references to the /uploads/<name> form",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.Records.NormalizePhotoRefs(ctx)
		if err != nil {
			return errs.Wrap(err, "normalize photo refs")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "normalized: acceptance=%d issues=%d actions=%d\n",
			result.UpdatedAcceptance, result.UpdatedIssues, result.UpdatedActions); err != nil {
			return errs.Wrap(err, "write normalize output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(normalizePhotosCmd)
}
