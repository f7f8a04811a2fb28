package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
)

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage task categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories, seeding the defaults on first use",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCategoryList(app.Gateways.Categories.List(ctx, app.owner(ctx))))
			return nil
		},
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.Gateways.Categories.Create(ctx, domain.CategoryInput{Name: args[0], Color: color}, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s %s\n", formatter.Bold(c.Name), formatter.Dim(c.ID))
			return nil
		},
	}
	add.Flags().StringVar(&color, "color", "#6B7280", "Hex color, e.g. #3B82F6")

	var yes bool
	rm := &cobra.Command{
		Use:   "rm <id-or-name>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCategoryID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirmDestructive(fmt.Sprintf("Delete category %s?", args[0]), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Gateways.Categories.Delete(ctx, id, app.owner(ctx)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", id)
			return nil
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	cmd.AddCommand(list, add, rm)
	return cmd
}
