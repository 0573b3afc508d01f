package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"research-chatbot/internal/rag"
	"research-chatbot/internal/service"
)

type askOutput struct {
	Answer    string             `json:"answer"`
	Source    string             `json:"source"`
	Sources   []rag.ScoredSource `json:"sources"`
	Abstained bool               `json:"abstained"`
	Reason    string             `json:"reason,omitempty"`
	Model     string             `json:"model"`
	SessionID string             `json:"session_id"`
}

func newAskCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question",
		Long:  "Answer a question from the indexed collection. Pass --session to continue a conversation.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, open)
		},
	}

	cmd.Flags().StringP("session", "s", "", "Session id (default: a new session)")
	cmd.Flags().StringP("model", "m", "", "Model variant: 4o, 4o-mini, o1, o1-mini, o3-mini")
	cmd.Flags().Int("year", 0, "Only use papers from this year")
	cmd.Flags().Int("from", 0, "First year of a year range")
	cmd.Flags().Int("to", 0, "Last year of a year range")
	cmd.Flags().Int("past-years", 0, "Only use papers from the last N years")
	cmd.Flags().Float64("alpha", 0, "Recency weight between 0 and 1")

	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("year", "from", "past-years")
	cmd.MarkFlagsMutuallyExclusive("year", "to", "past-years")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string, open Opener) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	sessionID, _ := cmd.Flags().GetString("session")
	model, _ := cmd.Flags().GetString("model")
	if strings.TrimSpace(sessionID) == "" {
		sessionID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	req := service.AskRequest{
		SessionID: sessionID,
		Question:  strings.Join(args, " "),
		Filters:   filtersFromFlags(cmd.Flags()),
		Model:     model,
	}

	return withService(cmd, open, func(svc service.QueryService) error {
		resp, err := svc.Ask(cmd.Context(), req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == formatJSON {
			return writeJSON(out, askOutput{
				Answer:    resp.Answer,
				Source:    resp.Source,
				Sources:   resp.Sources,
				Abstained: resp.Abstained,
				Reason:    string(resp.Reason),
				Model:     resp.Model,
				SessionID: resp.SessionID,
			})
		}

		fmt.Fprintln(out, resp.Answer)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Sources: %s\n", resp.Source)
		if resp.Model != "" {
			fmt.Fprintf(out, "Model:   %s\n", resp.Model)
		}
		fmt.Fprintf(out, "Session: %s\n", resp.SessionID)
		return nil
	})
}

// filtersFromFlags builds the request filter object from the flags that were set.
// Values are passed through unchecked; the pipeline drops malformed ones.
func filtersFromFlags(flags *pflag.FlagSet) map[string]any {
	filters := map[string]any{}

	switch {
	case flags.Changed("year"):
		year, _ := flags.GetInt("year")
		filters["year"] = year
	case flags.Changed("from"):
		from, _ := flags.GetInt("from")
		to, _ := flags.GetInt("to")
		filters["yearRange"] = map[string]any{"startYear": from, "endYear": to}
	case flags.Changed("past-years"):
		n, _ := flags.GetInt("past-years")
		filters["pastYears"] = n
	}

	if flags.Changed("alpha") {
		alpha, _ := flags.GetFloat64("alpha")
		filters["alpha"] = alpha
	}

	if len(filters) == 0 {
		return nil
	}
	return filters
}
