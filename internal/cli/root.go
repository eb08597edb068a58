// Package cli implements the todo command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tasklists/internal/client"
	"github.com/spf13/cobra"
	"go-simpler.org/env"
)

const defaultAPIURL = "http://localhost:8000"

var errNotLoggedIn = errors.New("not logged in; run `todo login` first")

type App struct {
	APIURL     string
	ConfigPath string
	Token      string

	creds  Credentials
	clock  clockwork.Clock
	newAPI func(baseURL, token string) (client.API, error)
}

// envConfig holds settings that may come from the environment instead of
// flags or the credentials file.
type envConfig struct {
	APIURL     string `env:"TODO_API_URL"`
	Token      string `env:"TODO_TOKEN"`
	ConfigPath string `env:"TODO_CONFIG"`
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{
		clock: clockwork.NewRealClock(),
		newAPI: func(baseURL, token string) (client.API, error) {
			return client.NewHTTPClient(baseURL, client.WithToken(token))
		},
	})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "Manage to-do lists and tasks",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  todo login --email ada@example.com
  todo lists add Groceries
  todo tasks add groceries "Buy milk" --tag dairy
  todo tasks done 3f2a
  todo lists move groceries 1
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.resolve()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "API base URL (default "+defaultAPIURL+")")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to the credentials file")

	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newTasksCmd(app))

	return cmd
}

// resolve fills in the API URL and token. Flags win over the environment,
// which wins over the credentials file.
func (a *App) resolve() error {
	var ec envConfig
	if err := env.Load(&ec, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	path := firstNonEmpty(a.ConfigPath, ec.ConfigPath)
	if path == "" {
		p, err := defaultCredentialsPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.ConfigPath = path

	creds, err := loadCredentials(path)
	if err != nil {
		return err
	}
	a.creds = creds

	a.APIURL = firstNonEmpty(a.APIURL, ec.APIURL, creds.APIURL, defaultAPIURL)
	a.Token = firstNonEmpty(ec.Token, creds.Token)
	return nil
}

func (a *App) api() (client.API, error) {
	return a.newAPI(a.APIURL, a.Token)
}

// store returns a client store for an authenticated user.
func (a *App) store() (*client.Store, error) {
	if a.Token == "" {
		return nil, errNotLoggedIn
	}
	api, err := a.api()
	if err != nil {
		return nil, err
	}
	return client.NewStore(api, a.clock), nil
}

// loadStore fetches the overview, and the task list when withTasks is set.
func (a *App) loadStore(ctx context.Context, withTasks bool) (*client.Store, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	if err := st.FetchLists(ctx); err != nil {
		return nil, apiError(err)
	}
	if withTasks {
		if err := st.FetchTasks(ctx); err != nil {
			return nil, apiError(err)
		}
	}
	return st, nil
}

// apiError reduces err to the message the server sent.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(client.ErrorMessage(err))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
