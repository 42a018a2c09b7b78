package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/usecase/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant one question about project data",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		projectName, _ := cmd.Flags().GetString("project")
		query := strings.Join(cmd.Flags().Args(), " ")

		out, err := svc.Assistant.Chat(ctx, assistant.ChatInput{
			ProjectName: projectName,
			Query:       query,
		})
		if err != nil {
			return errs.Wrap(err, "ask assistant")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), out.Answer); err != nil {
			return errs.Wrap(err, "write answer")
		}
		logging.Info(ctx, "assistant answered",
			slog.String("route", out.Meta.Route),
			slog.Bool("llm_used", out.Meta.LLM.Used),
		)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("project", "", "Project name (default project when empty)")
}
