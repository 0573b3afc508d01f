package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"research-chatbot/internal/service"
)

type turnOutput struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

func newHistoryCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the turns of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			sessionID, _ := cmd.Flags().GetString("session")

			return withService(cmd, open, func(svc service.QueryService) error {
				turns, err := svc.History(cmd.Context(), sessionID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if format == formatJSON {
					list := make([]turnOutput, len(turns))
					for i, t := range turns {
						list[i] = turnOutput{User: t.UserQuestion, AI: t.AIAnswer}
					}
					return writeJSON(out, list)
				}

				if len(turns) == 0 {
					fmt.Fprintln(out, "No turns.")
					return nil
				}
				for i, t := range turns {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "User: %s\nAI:   %s\n", t.UserQuestion, t.AIAnswer)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringP("session", "s", "", "Session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newResetCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the turns of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessionID, _ := cmd.Flags().GetString("session")

			return withService(cmd, open, func(svc service.QueryService) error {
				if err := svc.Reset(cmd.Context(), sessionID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s cleared\n", sessionID)
				return nil
			})
		},
	}

	cmd.Flags().StringP("session", "s", "", "Session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
