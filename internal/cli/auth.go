package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/pscheid92/tasklists/internal/client"
	"github.com/spf13/cobra"
)

func newRegisterCmd(app *App) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = password

			api, err := app.api()
			if err != nil {
				return err
			}
			tok, err := api.Register(cmd.Context(), req)
			if err != nil {
				return apiError(err)
			}
			if err := app.saveSession(req.Email, tok); err != nil {
				return err
			}

			st := newStyles(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), st.success.Render("Registered and logged in as "+req.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "First name")
	cmd.Flags().StringVar(&req.Surname, "surname", "", "Last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("surname")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			api, err := app.api()
			if err != nil {
				return err
			}
			tok, err := api.Login(cmd.Context(), email, pw)
			if err != nil {
				return apiError(err)
			}
			if err := app.saveSession(email, tok); err != nil {
				return err
			}

			st := newStyles(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), st.success.Render("Logged in as "+email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Token == "" {
				return errNotLoggedIn
			}

			api, err := app.api()
			if err != nil {
				return err
			}
			// The local token is dropped even if the server is unreachable.
			if err := api.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: server logout failed:", client.ErrorMessage(err))
			}

			creds := Credentials{APIURL: app.creds.APIURL, Email: app.creds.Email}
			if err := saveCredentials(app.ConfigPath, creds); err != nil {
				return err
			}
			app.creds = creds
			app.Token = ""

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Token == "" {
				return errNotLoggedIn
			}
			api, err := app.api()
			if err != nil {
				return err
			}
			user, err := api.Me(cmd.Context())
			if err != nil {
				return apiError(err)
			}

			st := newStyles(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				st.title.Render(user.Name), st.title.Render(user.Surname), st.muted.Render("<"+user.Email+">"))
			return nil
		},
	}
}

func (a *App) saveSession(email string, tok *client.Token) error {
	creds := Credentials{
		APIURL:    a.APIURL,
		Token:     tok.Token,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		ExpiresAt: tok.ExpiresAt,
	}
	if err := saveCredentials(a.ConfigPath, creds); err != nil {
		return err
	}
	a.creds = creds
	a.Token = tok.Token
	return nil
}

// readPassword returns flagValue, or the first line of stdin when it is empty.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", errors.New("password is required")
	}
	password := strings.TrimRight(scanner.Text(), "\r")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
