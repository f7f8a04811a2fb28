// Package cli is the learnful command-line interface.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	appsvc "github.com/yosuakev/learnful/internal/app"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/gateway"
)

// SessionManager signs the user in and out of the remote store.
type SessionManager interface {
	gateway.SessionSource
	Login(userID string) (*domain.UserSession, error)
	Logout() error
}

// App holds everything CLI commands need.
type App struct {
	Gateways *gateway.Set
	Timers   appsvc.TimerUseCase
	Status   appsvc.StatusUseCase
	Session  SessionManager

	// Now defaults to time.Now.
	Now func() time.Time
	// IsInteractive reports whether prompts may be shown.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh form.
	Confirm func(title string) (bool, error)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// owner is the user id gateway calls are scoped to, "" on the local path.
func (a *App) owner(ctx context.Context) string {
	if a.Session == nil {
		return ""
	}
	if s := a.Session.CurrentSession(ctx); s != nil {
		return s.UserID
	}
	return ""
}

// NewRootCmd creates the top-level "learnful" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "learnful",
		Short:         "Tasks, learning goals and study timers, local-first",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTaskCmd(app),
		newCategoryCmd(app),
		newGoalCmd(app),
		newSessionCmd(app),
		newEventCmd(app),
		newTimerCmd(app),
		newStatusCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
	)

	return root
}
