package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/config"
	"limeal.fr/cobalt/pkg/game/launcher"
)

func newJavaCmd(app *App) *cobra.Command {
	javaCmd := &cobra.Command{
		Use:     "java",
		Aliases: []string{"джава"},
		Short:   "Show or change the Java runtime used to launch the game",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showJava(cmd.Context(), app)
		},
	}

	javaCmd.AddCommand(
		&cobra.Command{
			Use:     "set <path>",
			Aliases: []string{"путь"},
			Short:   "Use the java executable at path",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setJava(cmd.Context(), app, args[0])
			},
		},
		&cobra.Command{
			Use:     "reset",
			Aliases: []string{"сброс"},
			Short:   "Forget the configured Java and use the one on PATH",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				major, _ := strconv.Atoi(config.DefaultJavaVersion)
				if err := app.Config.SetJavaRuntime("", major); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "✅ Java path reset, the system java will be used")
				return nil
			},
		},
		&cobra.Command{
			Use:     "auto [major]",
			Aliases: []string{"авто"},
			Short:   "Search the usual install locations for a Java",
			Args:    cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				major := 0
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid Java version %q", args[0])
					}
					major = n
				}
				return autoJava(cmd.Context(), app, major)
			},
		},
	)
	return javaCmd
}

func showJava(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load()
	if err != nil {
		return err
	}
	path := cfg.Java()
	if path == "" {
		fmt.Fprintln(app.Out, "Java: system java from PATH")
	} else {
		fmt.Fprintf(app.Out, "Java: %s\n", path)
	}
	fmt.Fprintf(app.Out, "Configured version: %s\n", cfg.JavaVersion)

	probe := path
	if probe == "" {
		probe = "java"
	}
	if raw, err := app.Resolver.Probe(ctx, probe); err == nil {
		fmt.Fprintf(app.Out, "Reported version: %s\n", raw)
	} else {
		app.Log.Debugf("probe %s: %v", probe, err)
		fmt.Fprintln(app.Out, "Reported version: unknown")
	}
	return nil
}

func setJava(ctx context.Context, app *App, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", launcher.ErrExecutableNotFound, abs)
	}
	raw, err := app.Resolver.Probe(ctx, abs)
	if err != nil {
		return fmt.Errorf("%s is not a working java: %w", abs, err)
	}
	major := launcher.MajorOf(raw)
	if err := app.Config.SetJavaRuntime(abs, major); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✅ Java %d selected: %s\n", major, abs)
	return nil
}

func autoJava(ctx context.Context, app *App, major int) error {
	fmt.Fprintln(app.Out, "Searching for Java...")
	rt, err := launcher.FindJava(ctx, major, app.Resolver.Probe)
	if err != nil {
		return err
	}
	if err := app.Config.SetJavaRuntime(rt.Path, rt.Major); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✅ Java %d selected: %s\n", rt.Major, rt.Path)
	return nil
}
