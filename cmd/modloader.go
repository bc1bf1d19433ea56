package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/launcher"
	"limeal.fr/cobalt/pkg/game/modloader"
)

func newModloaderCmd(app *App) *cobra.Command {
	var loaderVersion string

	modloaderCmd := &cobra.Command{
		Use:     "modloader [forge|fabric|quilt|neoforge] [game-version]",
		Aliases: []string{"модлоадеры", "modloaders"},
		Short:   "Install Forge, Fabric, Quilt or NeoForge",
		Long: `Install a modloader for a game version and select the resulting version.

The latest Fabric, Quilt and NeoForge builds are picked automatically; Forge
builds are listed so you can choose one. Missing arguments are asked for.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := loaderKind(app, args)
			if err != nil || kind == 0 {
				return err
			}

			cfg, err := app.Config.Load()
			if err != nil {
				return err
			}
			game := ""
			if len(args) == 2 {
				game = args[1]
			} else {
				def := launcher.BaseGameVersion(cfg.Selected())
				prompt := "Game version: "
				if def != "" {
					prompt = fmt.Sprintf("Game version [%s]: ", def)
				}
				if game, err = app.Prompt.Line(prompt); err != nil {
					return err
				}
				if game == "" {
					game = def
				}
			}
			if game == "" {
				return fmt.Errorf("a game version is required")
			}

			java := cfg.Java()
			if java == "" {
				java = "java"
			}

			fmt.Fprintf(app.Out, "Installing %s for %s...\n", kind, game)
			id, err := app.Dispatcher().Install(cmd.Context(), modloader.Request{
				Kind:          kind,
				GameVersion:   game,
				LoaderVersion: loaderVersion,
				Dir:           app.GameDir(game, cfg.SeparateVersionDirs),
				Java:          java,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "✅ %s installed and selected\n", id)
			return nil
		},
	}
	modloaderCmd.Flags().StringVarP(&loaderVersion, "loader", "l", "", "Loader build to install instead of the latest")
	return modloaderCmd
}

func loaderKind(app *App, args []string) (modloader.Kind, error) {
	if len(args) > 0 {
		return modloader.ParseKind(args[0])
	}
	kinds := modloader.Kinds()
	items := make([]string, len(kinds))
	for i, k := range kinds {
		items[i] = k.String()
	}
	idx, err := app.Prompt.Choice("Modloader: ", items)
	if err != nil || idx < 0 {
		return 0, err
	}
	return kinds[idx], nil
}

// loaderNames is used by the info command.
func loaderNames() string {
	var names []string
	for _, k := range modloader.Kinds() {
		names = append(names, strings.ToLower(k.String()))
	}
	return strings.Join(names, ", ")
}
