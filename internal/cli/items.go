package cli

import (
	"errors"
	"fmt"

	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/store"

	"github.com/spf13/cobra"
)

func addItems(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "items LIST_ID",
		Short: "Print the items of a shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				items, err := p.Items(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderItems(app.Out, items)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addAdd(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "add LIST_ID NAME QUANTITY [UNIT]",
		Short: "Add an item to a shopping list and print its id",
		Example: `
shoplist add 01HZX3JQ6V1D2N8Y5T0R4KCM7B Milk 2 l
shoplist add 01HZX3JQ6V1D2N8Y5T0R4KCM7B Bread 1
`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				id, err := p.AddItem(cmd.Context(), args[0], args[1], args[2], optionalArg(args, 3))
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, id)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "edit LIST_ID ITEM_ID NAME QUANTITY [UNIT]",
		Short: "Replace name, quantity and unit of an item",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				err := p.EditItem(cmd.Context(), args[0], args[1], args[2], args[3], optionalArg(args, 4))
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Updated %s\n", args[1])
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command, app *App) {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove LIST_ID ITEM_ID",
		Short: "Remove an item from a shopping list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("pass --yes to confirm removing the item")
			}
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				if err := p.DeleteItem(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Removed %s\n", args[1])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the removal")

	topLevel.AddCommand(cmd)
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
