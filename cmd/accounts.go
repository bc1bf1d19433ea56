package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/profile"
)

func newAccountsCmd(app *App) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"акк", "account"},
		Short:   "Manage offline and ely.by accounts",
		Long: `Manage accounts.

Without a sub command the accounts are listed; when there are none you are
asked to create one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := app.Accounts.List()
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(app.Out, "No accounts yet")
				return addAccountInteractive(cmd.Context(), app)
			}
			return listAccounts(app)
		},
	}

	accountsCmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"список"},
			Short:   "List accounts",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listAccounts(app)
			},
		},
		&cobra.Command{
			Use:     "add [username]",
			Aliases: []string{"добавить"},
			Short:   "Add an offline account",
			Args:    cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				username := ""
				if len(args) == 1 {
					username = args[0]
				}
				return addOffline(app, username)
			},
		},
		&cobra.Command{
			Use:     "add-ely [username] [email]",
			Aliases: []string{"ely"},
			Short:   "Add an ely.by account",
			Args:    cobra.MaximumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return addEly(cmd.Context(), app, args)
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"удалить", "rm"},
			Short:   "Delete an account",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := app.Accounts.Delete(id); err != nil {
					return err
				}
				if err := app.Tokens.DeleteToken(id); err != nil {
					app.Log.Warnf("could not remove the token of account %d: %v", id, err)
				}
				cfg, err := app.Config.Load()
				if err == nil && cfg.CurrentAccount != nil && *cfg.CurrentAccount == id {
					if err := app.Config.SetCurrentAccount(nil); err != nil {
						return err
					}
				}
				fmt.Fprintf(app.Out, "✅ Account %d deleted\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:     "select <id>",
			Aliases: []string{"выбрать", "use"},
			Short:   "Select the account used to play",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				acc, err := app.Accounts.Get(id)
				if err != nil {
					return err
				}
				if err := app.Config.SetCurrentAccount(&acc.ID); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "✅ Current account: %s\n", acc.Username)
				return nil
			},
		},
	)
	return accountsCmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}

func listAccounts(app *App) error {
	accounts, err := app.Accounts.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(app.Out, "No accounts yet, add one with 'accounts add <name>'")
		return nil
	}
	cfg, err := app.Config.Load()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(app.Out)
	t.AppendHeader(table.Row{"", "ID", "Username", "Type", "Created"})
	for _, acc := range accounts {
		mark := ""
		if cfg.CurrentAccount != nil && *cfg.CurrentAccount == acc.ID {
			mark = "✓"
		}
		t.AppendRow(table.Row{mark, acc.ID, acc.Username, acc.Type, acc.CreatedAt})
	}
	t.Render()
	return nil
}

// addAccountInteractive creates the first account and selects it.
func addAccountInteractive(ctx context.Context, app *App) error {
	idx, err := app.Prompt.Choice("Account type: ", []string{"Offline account", "Ely.by account"})
	if err != nil || idx < 0 {
		return err
	}
	kind := profile.KindOffline
	if idx == 1 {
		kind = profile.KindEly
	}

	var acc *profile.Account
	if kind == profile.KindOffline {
		acc, err = createOffline(app, "")
	} else {
		acc, err = createEly(ctx, app, "", "")
	}
	if err != nil || acc == nil {
		return err
	}
	return app.Config.SetCurrentAccount(&acc.ID)
}

func addOffline(app *App, username string) error {
	_, err := createOffline(app, username)
	return err
}

func createOffline(app *App, username string) (*profile.Account, error) {
	if username == "" {
		var err error
		if username, err = app.Prompt.Line("Username: "); err != nil {
			return nil, err
		}
		if username == "" {
			return nil, nil
		}
	}
	acc, err := app.Accounts.Add(username, profile.KindOffline, "")
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(app.Out, "✅ Account '%s' added with id %d\n", acc.Username, acc.ID)
	return &acc, nil
}

func addEly(ctx context.Context, app *App, args []string) error {
	username, email := "", ""
	if len(args) > 0 {
		username = args[0]
	}
	if len(args) > 1 {
		email = args[1]
	}
	_, err := createEly(ctx, app, username, email)
	return err
}

// createEly signs in to ely.by, stores the account and keeps its access token
// in the OS keyring.
func createEly(ctx context.Context, app *App, username, email string) (*profile.Account, error) {
	var err error
	if username == "" {
		if username, err = app.Prompt.Line("Display name: "); err != nil {
			return nil, err
		}
	}
	if email == "" {
		if email, err = app.Prompt.Line("Ely.by email or login: "); err != nil {
			return nil, err
		}
	}
	password, err := app.Prompt.Password("Ely.by password: ")
	if err != nil {
		return nil, err
	}
	if username == "" || email == "" || password == "" {
		return nil, errors.New("display name, email and password are required")
	}

	fmt.Fprintln(app.Out, "Signing in to Ely.by...")
	resp, err := app.Ely.AuthenticateWithCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	acc, err := app.Accounts.Add(username, profile.KindEly, email)
	if err != nil {
		return nil, err
	}
	if err := app.Tokens.SetToken(acc.ID, resp.Token); err != nil {
		app.Log.Warnf("the access token could not be stored, the game will start without it: %v", err)
	}
	fmt.Fprintf(app.Out, "✅ Ely.by account '%s' (%s) added with id %d\n", acc.Username, resp.UserName, acc.ID)
	return &acc, nil
}
