package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"limeal.fr/cobalt/pkg/game/installer"
)

const pageSize = 15

func newVersionsCmd(app *App, use, alias, versionType, title string) *cobra.Command {
	return &cobra.Command{
		Use:     use + " [page]",
		Aliases: []string{alias},
		Short:   "Browse " + strings.ToLower(title),
		Long: title + `, newest first, ` + strconv.Itoa(pageSize) + ` per page.

Navigate with n (с) for the next page, p (п) for the previous one, a number
to pick a version to install, or q (в) to leave.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid page %q", args[0])
				}
				page = n
			}
			return browseVersions(cmd.Context(), app, versionType, title, page)
		},
	}
}

// Page is one slice of a paginated list.
type Page struct {
	Number int
	Total  int
	Start  int
	Items  []installer.Version
}

// Paginate returns page n (1-based, clamped) of items.
func Paginate(items []installer.Version, n, size int) Page {
	total := (len(items) + size - 1) / size
	if total == 0 {
		total = 1
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	start := (n - 1) * size
	end := min(start+size, len(items))
	return Page{Number: n, Total: total, Start: start, Items: items[start:end]}
}

func filterVersions(all []installer.Version, versionType string) []installer.Version {
	var out []installer.Version
	for _, v := range all {
		if v.Type == versionType {
			out = append(out, v)
		}
	}
	return out
}

func renderPage(app *App, title string, p Page) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(app.Out)
	t.SetTitle(fmt.Sprintf("%s (page %d/%d)", title, p.Number, p.Total))
	t.AppendHeader(table.Row{"#", "Version", "Type"})
	for i, v := range p.Items {
		t.AppendRow(table.Row{p.Start + i + 1, v.ID, v.Type})
	}
	t.Render()
}

func browseVersions(ctx context.Context, app *App, versionType, title string, page int) error {
	cfg, err := app.Config.Load()
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "Fetching the version list...")
	all, err := app.Installer.ListAvailableVersions(ctx, app.GameDir("", cfg.SeparateVersionDirs))
	if err != nil {
		return err
	}
	versions := filterVersions(all, versionType)
	if len(versions) == 0 {
		fmt.Fprintln(app.Out, "No versions of this type")
		return nil
	}

	for {
		p := Paginate(versions, page, pageSize)
		renderPage(app, title, p)

		answer, err := app.Prompt.Line("n: next, p: previous, number: install, q: quit > ")
		if err != nil {
			return nil
		}
		switch strings.ToLower(answer) {
		case "n", "с", "next":
			if p.Number == p.Total {
				fmt.Fprintln(app.Out, "This is the last page")
			}
			page = p.Number + 1
		case "p", "п", "prev":
			if p.Number == 1 {
				fmt.Fprintln(app.Out, "This is the first page")
			}
			page = p.Number - 1
		case "", "q", "в", "quit":
			return nil
		default:
			n, err := strconv.Atoi(answer)
			if err != nil || n < 1 || n > len(versions) {
				fmt.Fprintln(app.Out, "Unknown choice")
				page = p.Number
				continue
			}
			id := versions[n-1].ID
			fmt.Fprintf(app.Out, "Selected %s\n", id)
			if ok, err := app.Prompt.YesNo("Install this version? (yes/no): "); err != nil || !ok {
				return nil
			}
			return installVersion(ctx, app, id)
		}
	}
}
