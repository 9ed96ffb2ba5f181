// Package cli provides the command-line interface for dashscrape.
package cli

import (
	"context"

	"github.com/law-makers/dashscrape/internal/app"
	"github.com/spf13/cobra"
)

// ctxKey is used for storing the application in command contexts
type ctxKey string

const appKey ctxKey = "app"

// currentApp is the application of the running command, kept so Execute can
// close it even when the command failed
var currentApp *app.Application

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	currentApp = a
	if cmd == nil {
		return
	}
	// the root carries the context of the current Execute call
	ctx := cmd.Root().Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetAppFromCmd retrieves the Application stored for cmd
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd != nil && cmd.Context() != nil {
		if a, ok := cmd.Context().Value(appKey).(*app.Application); ok && a != nil {
			return a
		}
	}
	return currentApp
}
