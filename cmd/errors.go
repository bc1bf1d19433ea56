package cmd

import (
	"context"
	"errors"
	"fmt"

	"limeal.fr/cobalt/pkg/game/authenticator"
	"limeal.fr/cobalt/pkg/game/installer"
	"limeal.fr/cobalt/pkg/game/launcher"
	"limeal.fr/cobalt/pkg/game/modloader"
	"limeal.fr/cobalt/pkg/game/profile"
)

// guidance tells the user what to do next for the errors they can fix.
var guidance = []struct {
	err  error
	hint string
}{
	{launcher.ErrNotInstalled, "Install a version first with 'install <version>' (установить)"},
	{launcher.ErrNoAccount, "Set up an account first with 'accounts' (акк)"},
	{launcher.ErrIncompatibleRuntime, "Install a matching Java with 'install java' (установить джава)"},
	{launcher.ErrUnsupportedPlatform, "Install Java manually and point to it with 'java set <path>'"},
	{launcher.ErrExecutableNotFound, "Set the Java path manually with 'java set <path>'"},
	{launcher.ErrLaunch, "Check the Java installation and the game files, Java 17 is installed with 'install java 17'"},
	{modloader.ErrLoaderUnavailable, "No build of this loader exists for that game version"},
	{modloader.ErrNetwork, "Check your internet connection and try again"},
	{installer.ErrNetwork, "Check your internet connection and try again"},
	{installer.ErrVersionNotFound, "List the available versions with 'releases' (релизы)"},
	{profile.ErrAccountNotFound, "List the accounts with 'accounts' (акк)"},
	{authenticator.ErrInvalidCredentials, "Check the ely.by email and password"},
}

func printError(app *App, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, modloader.ErrCancelled):
		fmt.Fprintln(app.Out, "Cancelled")
		return
	case isUnknownCommand(err):
		fmt.Fprintf(app.Out, "❌ %v\n", err)
		fmt.Fprintln(app.Out, "Type 'help' (помощь) for the list of commands")
		return
	}

	fmt.Fprintf(app.Out, "❌ %v\n", err)
	for _, g := range guidance {
		if errors.Is(err, g.err) {
			fmt.Fprintln(app.Out, "   "+g.hint)
			return
		}
	}
}
