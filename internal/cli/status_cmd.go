package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appsvc "github.com/yosuakev/learnful/internal/app"
	"github.com/yosuakev/learnful/internal/cli/formatter"
)

func newStatusCmd(app *App) *cobra.Command {
	var goals []string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Dashboard of tasks, goal progress, timers and upcoming events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := appsvc.StatusRequest{OwnerID: app.owner(ctx)}
			for _, g := range goals {
				goal, err := resolveGoal(ctx, app, g)
				if err != nil {
					return err
				}
				req.GoalScope = append(req.GoalScope, goal.ID)
			}
			resp, err := app.Status.Status(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStatus(resp))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&goals, "goal", nil, "Limit goal summaries to these goals")
	return cmd
}
