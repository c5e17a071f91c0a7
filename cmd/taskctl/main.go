package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"task-management-app/client"
	"task-management-app/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.GetCLIConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = newRootCmd(newApp(cfg, http.DefaultTransport, logger)).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	sessions client.SessionStore
	api      *client.API
	logger   *log.Logger
}

func newApp(cfg config.CLIConfig, base http.RoundTripper, logger *log.Logger) *app {
	sessions := client.NewFileSessionStore(cfg.SessionPath)
	transport := &client.AuthTransport{
		Base:     base,
		Sessions: sessions,
		OnExpired: func() {
			logger.Debug("server rejected the token, session cleared", "path", sessions.Path())
		},
	}
	return &app{
		sessions: sessions,
		api:      client.NewAPI(cfg.APIURL, transport, cfg.Timeout, logger),
		logger:   logger,
	}
}

// controller returns a loaded controller. It fails early when nobody is
// logged in so the user gets a hint instead of a 401.
func (a *app) controller(cmd *cobra.Command) (*client.Controller, error) {
	if _, err := a.sessions.Load(); err != nil {
		return nil, err
	}
	c := client.NewController(a.api, a.logger)
	if err := c.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage your task list from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		listCmd(a),
		addCmd(a),
		editCmd(a),
		completeCmd(a, "done", "Mark a task completed", true),
		completeCmd(a, "undo", "Mark a task pending again", false),
		rmCmd(a),
		moveCmd(a),
		activityCmd(a),
	)
	return root
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return "Session expired, please log in again."
	case errors.Is(err, client.ErrNoSession):
		return "Not logged in. Run 'taskctl login' first."
	default:
		return "Error: " + err.Error()
	}
}
