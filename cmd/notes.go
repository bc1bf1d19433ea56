package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:                "note <text...>",
		Aliases:            []string{"заметка"},
		Short:              "Add a timestamped note",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				var err error
				if text, err = app.Prompt.Line("Note: "); err != nil {
					return err
				}
			}
			if err := app.Notes.Add(text); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "✅ Note saved")
			return nil
		},
	}
}

func newNotesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "notes",
		Aliases: []string{"заметки"},
		Short:   "Show your notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := app.Notes.List()
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Fprintln(app.Out, "No notes yet, add one with 'note <text>'")
				return nil
			}
			fmt.Fprintln(app.Out, "YOUR NOTES:")
			for _, l := range lines {
				fmt.Fprintf(app.Out, "  %s\n", l)
			}
			return nil
		},
	}
}
