// Package cmd is the interactive command line of the launcher.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/installer"
	"limeal.fr/cobalt/pkg/logging"
)

var errExit = errors.New("exit")

// NewRootCmd builds the command tree. The REPL builds a fresh tree for every
// line so no flag or argument state leaks between commands.
func NewRootCmd(app *App) *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "cobalt",
		Short: "Cobalt Launcher Nano, a command line Minecraft launcher",
		Long: `Cobalt Launcher Nano ` + installer.LauncherVersion + `

Installs game versions, modloaders and Java runtimes, manages offline and
ely.by accounts and launches the game. Without arguments an interactive
prompt is started; every command also works one-shot, e.g. "cobalt launch".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				setDebug()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHelp(app)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Out)
	rootCmd.SetIn(app.Prompt.in)

	rootCmd.SetHelpCommand(newHelpCmd(app))
	rootCmd.AddCommand(
		newAccountsCmd(app),
		newVersionsCmd(app, "releases", "релизы", "release", "Release versions"),
		newVersionsCmd(app, "snapshots", "снапшоты", "snapshot", "Snapshots"),
		newVersionsCmd(app, "beta", "бета", "old_beta", "Beta versions"),
		newVersionsCmd(app, "alpha", "альфа", "old_alpha", "Alpha versions"),
		newInstallCmd(app),
		newModloaderCmd(app),
		newLaunchCmd(app),
		newJavaCmd(app),
		newArgsCmd(app),
		newMemoryCmd(app),
		newSeparateCmd(app),
		newInfoCmd(app),
		newNoteCmd(app),
		newNotesCmd(app),
		newBackupCmd(app),
		newFolderCmd(app),
		newLogCmd(app),
		newCrashCmd(app),
		newExitCmd(),
	)
	for name, dir := range folderShortcuts {
		rootCmd.AddCommand(newShortcutCmd(app, name, dir))
	}
	return rootCmd
}

// Execute runs one command line against app. Interrupts cancel the command's
// context instead of killing the launcher.
func Execute(ctx context.Context, app *App, args []string) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	rootCmd := NewRootCmd(app)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// Main is the process entry point. It returns the exit status.
func Main(args []string) int {
	app, err := NewApp(AppOptions{Debug: hasDebugFlag(args)})
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}
	defer app.Close()

	if len(withoutDebugFlags(args)) == 0 {
		if err := RunREPL(context.Background(), app); err != nil {
			printError(app, err)
			return 1
		}
		return 0
	}

	err = Execute(context.Background(), app, args)
	if err != nil && !errors.Is(err, errExit) {
		printError(app, err)
		return 1
	}
	return 0
}

func hasDebugFlag(args []string) bool {
	for _, a := range args {
		if a == "--debug" || a == "-d" {
			return true
		}
	}
	return false
}

func withoutDebugFlags(args []string) []string {
	var out []string
	for _, a := range args {
		if a != "--debug" && a != "-d" {
			out = append(out, a)
		}
	}
	return out
}

func setDebug() {
	logging.SetLevel("debug")
}

func isUnknownCommand(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command")
}
