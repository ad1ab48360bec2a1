// Package cli implements the shoplist command line client.
package cli

import (
	"io"
	"os"
	"time"

	"shoppinglist-api/internal/database"
	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/store"

	"github.com/spf13/cobra"
)

// Opener opens the store a command runs against. The returned func releases it.
type Opener func() (store.Store, func(), error)

// OpenFromEnv opens the store configured by the same environment as the server
func OpenFromEnv() (store.Store, func(), error) {
	s, db, err := database.OpenStoreFromEnv()
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		_ = s.Close()
		if db != nil {
			_ = database.Close(db)
		}
	}, nil
}

// App carries what every command shares
type App struct {
	Open Opener
	Out  io.Writer

	// Timeout bounds waiting for the first synced view
	Timeout time.Duration
}

// New builds the root command
func New(app *App) *cobra.Command {
	if app.Open == nil {
		app.Open = OpenFromEnv
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Timeout <= 0 {
		app.Timeout = 10 * time.Second
	}

	cmd := &cobra.Command{
		Use:           "shoplist",
		Short:         "Manage shared shopping lists from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetOut(app.Out)

	addLists(cmd, app)
	addCreate(cmd, app)
	addRename(cmd, app)
	addDelete(cmd, app)
	addShare(cmd, app)
	addItems(cmd, app)
	addAdd(cmd, app)
	addEdit(cmd, app)
	addRemove(cmd, app)
	addWatch(cmd, app)
	return cmd
}

// withPipeline opens the store for the duration of fn
func (a *App) withPipeline(fn func(s store.Store, p *mutation.Pipeline) error) error {
	s, release, err := a.Open()
	if err != nil {
		return err
	}
	defer release()
	return fn(s, mutation.NewPipeline(s))
}
