package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/installer"
	"limeal.fr/cobalt/pkg/game/launcher"
)

func newArgsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "args [flags...]",
		Aliases: []string{"арг"},
		Short:   "Show or replace the JVM flags",
		Long: `Show the JVM flags passed to the game. With arguments they replace the
current flags, e.g. "args -Xmx4G -Xms2G -XX:+UseG1GC". Without arguments
you are asked for new flags; an empty answer keeps the current ones.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load()
			if err != nil {
				return err
			}
			value := strings.Join(args, " ")
			if value == "" {
				fmt.Fprintf(app.Out, "Current JVM flags: %s\n", cfg.JavaArgs)
				if value, err = app.Prompt.Line("New flags (empty keeps the current ones): "); err != nil {
					return err
				}
				if value == "" {
					return nil
				}
			}
			normalized := launcher.ParseJVMArgs(value).String()
			if err := app.Config.SetJavaArgs(normalized); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "✅ JVM flags set: %s\n", normalized)
			return nil
		},
	}
}

func newMemoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "memory <gigabytes>",
		Aliases: []string{"память"},
		Short:   "Set the game heap size in gigabytes (1-32)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load()
			if err != nil {
				return err
			}
			jvm := launcher.ParseJVMArgs(cfg.JavaArgs)

			value := ""
			if len(args) == 1 {
				value = args[0]
			} else {
				if gb := jvm.MaxMemoryGB(); gb > 0 {
					fmt.Fprintf(app.Out, "Current memory: %dGB\n", gb)
				}
				if value, err = app.Prompt.Line("Memory in GB (1-32): "); err != nil || value == "" {
					return err
				}
			}
			gb, err := strconv.Atoi(strings.TrimSuffix(strings.ToUpper(value), "G"))
			if err != nil {
				return fmt.Errorf("invalid memory value %q", value)
			}
			if err := jvm.SetMemory(gb); err != nil {
				return err
			}
			if err := app.Config.SetJavaArgs(jvm.String()); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "✅ Memory set to %dGB\n", gb)
			return nil
		},
	}
}

func newSeparateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "separate",
		Aliases: []string{"отдельные"},
		Short:   "Toggle a separate game folder per version",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := app.Config.ToggleSeparateVersionDirs()
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(app.Out, "✅ Every version now uses its own folder (~/.minecraft_<version>) under %s\n", app.Paths.Home)
			} else {
				fmt.Fprintf(app.Out, "✅ All versions now share %s\n", app.Paths.SharedGameDir())
			}
			return nil
		},
	}
}

func newInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "info",
		Aliases: []string{"инфо"},
		Short:   "Show the launcher status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printInfo(app)
		},
	}
}

func printInfo(app *App) error {
	cfg, err := app.Config.Load()
	if err != nil {
		return err
	}
	accounts, err := app.Accounts.List()
	if err != nil {
		return err
	}
	notes, err := app.Notes.List()
	if err != nil {
		return err
	}

	version := "none"
	status := ""
	if id := cfg.Selected(); id != "" {
		version = id
		status = "not installed"
		if installer.IsInstalled(app.GameDir(id, cfg.SeparateVersionDirs), id) {
			status = "installed"
		}
	}

	account := "none"
	if cfg.CurrentAccount != nil {
		if acc, err := app.Accounts.Get(*cfg.CurrentAccount); err == nil {
			account = fmt.Sprintf("%s (%s)", acc.Username, acc.Type)
		}
	}

	java := "system"
	if p := cfg.Java(); p != "" {
		java = p
	}

	folders := "shared"
	if cfg.SeparateVersionDirs {
		folders = "per version"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(app.Out)
	t.SetTitle("Cobalt Launcher Nano " + installer.LauncherVersion)
	t.AppendRows([]table.Row{
		{"Version", version, status},
		{"Account", account, fmt.Sprintf("%d total", len(accounts))},
		{"Java", java, "version " + cfg.JavaVersion},
		{"JVM flags", cfg.JavaArgs, ""},
		{"Game folders", folders, app.GameDir(cfg.Selected(), cfg.SeparateVersionDirs)},
		{"Data", app.Paths.Root, ""},
		{"Notes", len(notes), ""},
		{"Modloaders", loaderNames(), ""},
	})
	t.Render()
	return nil
}
