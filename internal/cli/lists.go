package cli

import (
	"context"
	"errors"
	"fmt"

	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/realtime"
	"shoppinglist-api/internal/store"

	"github.com/spf13/cobra"
)

func addLists(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Print all shopping lists with their item counts",
		Example: `
shoplist lists
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(s store.Store, _ *mutation.Pipeline) error {
				directory := realtime.NewDirectory(s, nil, nil)
				defer directory.Close()
				if err := directory.Start(); err != nil {
					return err
				}

				views, cancel := directory.Watch()
				defer cancel()

				ctx, stop := context.WithTimeout(cmd.Context(), app.Timeout)
				defer stop()
				select {
				case view := <-views:
					renderLists(app.Out, view)
					return nil
				case <-ctx.Done():
					if err := directory.LastError(); err != nil {
						return fmt.Errorf("lists did not sync: %w", err)
					}
					return fmt.Errorf("lists did not sync: %w", ctx.Err())
				}
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addCreate(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a shopping list and print its id",
		Example: `
shoplist create "Weekend BBQ"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				id, err := p.CreateList(cmd.Context(), args[0])
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

func addRename(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "rename LIST_ID NAME",
		Short: "Rename a shopping list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				if err := p.RenameList(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Renamed %s\n", args[0])
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, app *App) {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete LIST_ID",
		Short: "Delete a shopping list and all of its items",
		Example: `
shoplist delete 01HZX3JQ6V1D2N8Y5T0R4KCM7B --yes
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("deleting a list removes all of its items; pass --yes to confirm")
			}
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				result, err := p.DeleteList(cmd.Context(), args[0])
				if errors.Is(err, mutation.ErrPartialDelete) {
					return fmt.Errorf("%w; run the delete again to finish it", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Deleted %s (%d of %d items)\n", args[0], result.ItemsDeleted, result.ItemsTotal)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the delete")

	topLevel.AddCommand(cmd)
}

func addShare(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "share LIST_ID",
		Short: "Share a shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(_ store.Store, p *mutation.Pipeline) error {
				return p.ShareList(cmd.Context(), args[0])
			})
		},
	}

	topLevel.AddCommand(cmd)
}
