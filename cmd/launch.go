package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/game/launcher"
)

func newLaunchCmd(app *App) *cobra.Command {
	var mcServer string

	launchCmd := &cobra.Command{
		Use:     "launch",
		Aliases: []string{"запуск", "play"},
		Short:   "Launch the selected version with the current account",
		Long: `Launch the selected version with the current account.

The configured Java is checked against the version first. When it is too old
you are asked whether to start anyway. The launcher waits until the game exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd.Context(), app, mcServer)
		},
	}
	launchCmd.Flags().StringVar(&mcServer, "server", "", "Join a server on start (e.g mc.example.com)")
	return launchCmd
}

func launch(ctx context.Context, app *App, mcServer string) error {
	cfg, err := app.Config.Load()
	if err != nil {
		return err
	}
	version := cfg.Selected()
	p := launcher.Profile{
		VersionID: version,
		AccountID: cfg.CurrentAccount,
		JVMArgs:   launcher.ParseJVMArgs(cfg.JavaArgs),
		GameDir:   app.GameDir(version, cfg.SeparateVersionDirs),
	}

	builder := app.Builder()
	acc, err := builder.Check(p)
	if err != nil {
		return err
	}

	res, err := app.Resolver.Resolve(ctx, version, cfg.Java())
	var incompatible *launcher.IncompatibleRuntimeError
	switch {
	case errors.As(err, &incompatible):
		fmt.Fprintf(app.Out, "⚠️  Minecraft %s needs Java %d or newer, the configured Java is %d\n",
			version, incompatible.Required, incompatible.Runtime.Major)
		fmt.Fprintln(app.Out, "   Install one with 'install java'")
		ok, perr := app.Prompt.YesNo("Launch anyway? (yes/no): ")
		if perr != nil || !ok {
			return err
		}
		p.Runtime = incompatible.Runtime
	case err != nil:
		return err
	default:
		if res.Warning != "" {
			fmt.Fprintf(app.Out, "⚠️  %s\n", res.Warning)
		} else {
			fmt.Fprintf(app.Out, "Java %d found\n", res.Runtime.Major)
		}
		p.Runtime = res.Runtime
	}

	if mcServer != "" {
		p.Features = []rules.Feature{
			{
				AKey:  "has_quick_plays_support",
				Flag:  "quickPlayPath",
				Value: filepath.Join(p.GameDir, "quickPlay", "log.json"),
			},
			{
				AKey:  "is_quick_play_multiplayer",
				Flag:  "quickPlayMultiplayer",
				Value: mcServer,
			},
		}
	}

	memory := "2GB (default)"
	if gb := p.JVMArgs.MaxMemoryGB(); gb > 0 {
		memory = fmt.Sprintf("%dGB", gb)
	}
	fmt.Fprintln(app.Out, "LAUNCHING MINECRAFT")
	fmt.Fprintln(app.Out, "──────────────────────────────────")
	fmt.Fprintf(app.Out, "Version: %s\n", version)
	fmt.Fprintf(app.Out, "Account: %s\n", acc.Username)
	fmt.Fprintf(app.Out, "Memory:  %s\n", memory)
	fmt.Fprintf(app.Out, "Folder:  %s\n", p.GameDir)
	fmt.Fprintln(app.Out, "──────────────────────────────────")

	// Interrupts reach the game through the process group; the game's own
	// context is not cancelled with the command.
	code, err := builder.Run(context.WithoutCancel(ctx), p)
	if err != nil {
		return err
	}
	if code != 0 {
		fmt.Fprintf(app.Out, "Minecraft exited with code %d, see 'log' and 'crash'\n", code)
		return nil
	}
	fmt.Fprintln(app.Out, "Minecraft closed")
	return nil
}
