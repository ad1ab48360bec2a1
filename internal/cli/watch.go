package cli

import (
	"time"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/realtime"
	"shoppinglist-api/internal/store"

	"github.com/spf13/cobra"
)

func addWatch(topLevel *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "watch [LIST_ID]",
		Short: "Print lists, or the items of one list, every time they change",
		Long: `Without LIST_ID the list directory is printed on every change.
With LIST_ID the items of that list are printed instead, and their count is
kept current in the directory. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withPipeline(func(s store.Store, _ *mutation.Pipeline) error {
				directory := realtime.NewDirectory(s, nil, nil)
				defer directory.Close()
				if err := directory.Start(); err != nil {
					return err
				}

				if len(args) == 0 {
					views, cancel := directory.Watch()
					defer cancel()
					return follow(cmd, app, views, func(lists []models.List) {
						renderLists(app.Out, lists)
					})
				}

				detail, err := realtime.OpenDetail(s, args[0], directory)
				if err != nil {
					return err
				}
				defer detail.Close()

				views, cancel := detail.Watch()
				defer cancel()
				return follow(cmd, app, views, func(items []models.Item) {
					renderItems(app.Out, items)
				})
			})
		},
	}

	topLevel.AddCommand(cmd)
}

// follow renders every view until the command context ends or views closes
func follow[T any](cmd *cobra.Command, app *App, views <-chan T, render func(T)) error {
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case view, ok := <-views:
			if !ok {
				return nil
			}
			renderHeader(app.Out, time.Now())
			render(view)
		}
	}
}
