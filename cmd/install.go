package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/launcher"
)

var javaMajors = []int{8, 11, 17, 21}

func newInstallCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "install <version> | install java [major]",
		Aliases: []string{"установить"},
		Short:   "Install a game version or a Java runtime",
		Long: `Install a game version into the game folder and select it, or download a
Temurin JDK into the launcher's java folder with "install java".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if isJavaWord(args[0]) {
				major := 0
				if len(args) == 2 {
					n, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("invalid Java version %q", args[1])
					}
					major = n
				}
				return installJava(cmd.Context(), app, major)
			}
			return installVersion(cmd.Context(), app, args[0])
		},
	}
}

func isJavaWord(s string) bool {
	return s == "java" || s == "джава" || s == "jdk"
}

func installVersion(ctx context.Context, app *App, id string) error {
	cfg, err := app.Config.Load()
	if err != nil {
		return err
	}
	dir := app.GameDir(id, cfg.SeparateVersionDirs)

	fmt.Fprintf(app.Out, "Installing %s into %s...\n", id, dir)
	if err := app.Installer.InstallVersion(ctx, id, dir); err != nil {
		return err
	}
	if err := app.Config.SetSelectedVersion(id); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✅ %s installed and selected\n", id)
	return nil
}

func installJava(ctx context.Context, app *App, major int) error {
	if major == 0 {
		cfg, err := app.Config.Load()
		if err != nil {
			return err
		}
		recommended := 17
		if req, ok := launcher.RequiredJavaMajor(cfg.Selected()); ok {
			recommended = req
		}

		items := make([]string, len(javaMajors))
		for i, m := range javaMajors {
			items[i] = "Java " + strconv.Itoa(m)
			if m == recommended {
				items[i] += " (recommended)"
			}
		}
		fmt.Fprintln(app.Out, "Minecraft 1.17 and newer needs Java 17 or later")
		idx, err := app.Prompt.Choice("Java version: ", items)
		if err != nil || idx < 0 {
			return err
		}
		major = javaMajors[idx]
	}

	platform, arch := launcher.HostPlatform()
	fmt.Fprintf(app.Out, "Installing Java %d for %s/%s...\n", major, platform, arch)
	rt, err := app.Provisioner.Provision(ctx, major, platform, arch)
	if errors.Is(err, launcher.ErrUnsupportedPlatform) {
		return fmt.Errorf("%w: automatic Java install covers linux x64/arm64 and windows x64", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✅ Java %d installed: %s\n", major, rt.Path)

	if raw, err := launcher.ProbeJava(ctx, rt.Path); err == nil {
		fmt.Fprintf(app.Out, "   reports version %s\n", raw)
	}
	return nil
}
