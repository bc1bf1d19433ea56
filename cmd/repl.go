package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const banner = `
Cobalt Launcher Nano
──────────────────────────────────`

// RunREPL reads commands line by line until "exit" or end of input. A failing
// command prints its error and the loop goes on.
func RunREPL(ctx context.Context, app *App) error {
	fmt.Fprintln(app.Out, banner)
	fmt.Fprintln(app.Out, "Type 'help' (помощь) for the list of commands")

	for {
		line, err := app.Prompt.Line("\nCommand> ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(app.Out)
			return nil
		}
		if err != nil {
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		args[0] = strings.ToLower(args[0])

		err = Execute(ctx, app, args)
		if errors.Is(err, errExit) {
			fmt.Fprintln(app.Out, "Bye!")
			return nil
		}
		if err != nil {
			printError(app, err)
		}
	}
}
