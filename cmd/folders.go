package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/connectors"
	"limeal.fr/cobalt/pkg/game/folder"
)

var folderShortcuts = folder.Shortcuts

var shortcutAliases = map[string]string{
	"mods":          "моды",
	"resourcepacks": "ресурспак",
	"saves":         "миры",
	"configs":       "конфиги",
	"schematics":    "схемы",
}

var openFolder = folder.Open

func currentFolder(app *App) (*folder.GameFolder, error) {
	cfg, err := app.Config.Load()
	if err != nil {
		return nil, err
	}
	return app.Folder(cfg.SeparateVersionDirs, cfg.Selected()), nil
}

func newShortcutCmd(app *App, name, dir string) *cobra.Command {
	var aliases []string
	if a, ok := shortcutAliases[name]; ok {
		aliases = append(aliases, a)
	}
	return &cobra.Command{
		Use:     name,
		Aliases: aliases,
		Short:   fmt.Sprintf("Open the %s folder", dir),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := currentFolder(app)
			if err != nil {
				return err
			}
			return openSubFolder(app, gf, dir)
		},
	}
}

func openSubFolder(app *App, gf *folder.GameFolder, dir string) error {
	if !gf.Exists(dir) {
		ok, err := app.Prompt.YesNo(fmt.Sprintf("Folder %s does not exist, create it? (yes/no): ", dir))
		if err != nil || !ok {
			return err
		}
		if _, err := gf.Ensure(dir); err != nil {
			return err
		}
	}
	path := gf.Sub(dir)
	fmt.Fprintf(app.Out, "Opening %s\n", path)
	return openFolder(path)
}

func newFolderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "folder [name]",
		Aliases: []string{"папка"},
		Short:   "Open the game folder or one of its sub folders",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := currentFolder(app)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir, ok := folderShortcuts[strings.ToLower(args[0])]
				if !ok {
					return fmt.Errorf("unknown folder %q, try one of: %s", args[0], shortcutNames())
				}
				return openSubFolder(app, gf, dir)
			}
			if err := os.MkdirAll(gf.GetPath(), 0o755); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Opening %s\n", gf.GetPath())
			return openFolder(gf.GetPath())
		},
	}
}

func shortcutNames() string {
	names := make([]string, 0, len(folderShortcuts))
	for name := range folderShortcuts {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func newLogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "log",
		Aliases: []string{"лог", "logs"},
		Short:   "Copy the latest game log to the desktop",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := currentFolder(app)
			if err != nil {
				return err
			}
			dst, err := gf.CopyLatestLog(app.Paths.Desktop(), app.now())
			if errors.Is(err, folder.ErrNoLogs) {
				return fmt.Errorf("%w, launch the game first", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "✅ Log copied to %s\n", dst)
			return nil
		},
	}
}

func newCrashCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "crash",
		Aliases: []string{"краш", "crashes"},
		Short:   "Copy crash reports to the desktop",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := currentFolder(app)
			if err != nil {
				return err
			}
			dir, n, err := gf.CopyCrashReports(app.Paths.Desktop(), app.now())
			if errors.Is(err, folder.ErrNoCrashReports) {
				fmt.Fprintln(app.Out, "✅ No crash reports, the game has not crashed")
				return nil
			}
			if n == 0 {
				return err
			}
			if err != nil {
				app.Log.Warnf("some crash reports were not copied: %v", err)
			}
			fmt.Fprintf(app.Out, "✅ %d crash report(s) copied to %s\n", n, dir)
			if oerr := openFolder(dir); oerr != nil {
				app.Log.Debugf("open %s: %v", dir, oerr)
			}
			return nil
		},
	}
}

func newBackupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "backup [destination]",
		Aliases: []string{"бэкап"},
		Short:   "Back up saves, resource packs, configs, shaders, schematics and mods",
		Long: `Zip the important game folders and store the archive at destination.

The destination is a local directory (the desktop by default), a file:// URI
or an sftp://user@host/path URI. The uploaded archive is verified by sha256.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := app.Paths.Desktop()
			if len(args) == 1 {
				dest = args[0]
			}
			conn, err := backupConnector(dest)
			if err != nil {
				return err
			}

			gf, err := currentFolder(app)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Creating backup...")
			res, err := gf.Backup(conn, app.now())
			if err != nil {
				return err
			}
			if len(res.Folders) == 0 {
				fmt.Fprintln(app.Out, "⚠️  None of the backed up folders exist yet, the archive is empty")
			} else {
				fmt.Fprintf(app.Out, "Folders: %s\n", strings.Join(res.Folders, ", "))
			}
			fmt.Fprintf(app.Out, "✅ Backup created: %s\n", res.URI)
			return nil
		},
	}
}

// backupConnector accepts plain paths as well as connector URIs.
func backupConnector(dest string) (connectors.Connector, error) {
	if !strings.Contains(dest, "://") {
		abs, err := filepath.Abs(dest)
		if err != nil {
			return nil, err
		}
		return connectors.NewFileConnector(abs), nil
	}
	return connectors.FindConnectorFromURI(dest)
}
