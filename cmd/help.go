package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var helpRows = []table.Row{
	{"help", "помощь", "Show this list"},
	{"accounts [list|add|add-ely|delete|select]", "акк", "Manage accounts"},
	{"releases | snapshots | beta | alpha [page]", "релизы | снапшоты | бета | альфа", "Browse versions, 15 per page"},
	{"install <version>", "установить", "Install a game version"},
	{"install java [8|11|17|21]", "установить джава", "Download a Temurin JDK"},
	{"modloader [forge|fabric|quilt|neoforge] [version]", "модлоадеры", "Install a modloader"},
	{"launch [--server host]", "запуск", "Start the selected version"},
	{"java [set <path>|reset|auto [major]]", "джава", "Show or change the Java runtime"},
	{"args [flags...]", "арг", "Show or replace the JVM flags"},
	{"memory <1-32>", "память", "Set -Xmx/-Xms in gigabytes"},
	{"separate", "отдельные", "Toggle per-version game folders"},
	{"info", "инфо", "Launcher status"},
	{"note <text>", "заметка", "Add a note"},
	{"notes", "заметки", "Show notes"},
	{"backup [destination]", "бэкап", "Back up saves, packs, configs and mods"},
	{"folder [name]", "папка", "Open the game folder"},
	{"mods | resourcepacks | saves | configs | schematics", "моды | ресурспак | миры | конфиги | схемы", "Open a game sub folder"},
	{"log", "лог", "Copy the latest game log to the desktop"},
	{"crash", "краш", "Copy crash reports to the desktop"},
	{"exit", "выход", "Leave the launcher"},
}

func newHelpCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "help",
		Aliases: []string{"помощь"},
		Short:   "Show the list of commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHelp(app)
		},
	}
}

func printHelp(app *App) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(app.Out)
	t.AppendHeader(table.Row{"Command", "Alias", "Description"})
	t.AppendRows(helpRows)
	t.Render()
	return nil
}

func newExitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "exit",
		Aliases: []string{"выход", "quit"},
		Short:   "Leave the launcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errExit
		},
	}
}
