package commands

import (
	"bountywatch/internal/posting"
	"bountywatch/internal/serviceutil"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var showJson *bool

func init() {
	showJson = showCmd.Flags().Bool("json", false, "Print the snapshot as json.")
	rootCmd.AddCommand(showCmd)
}

func renderPostings(out io.Writer, postings []posting.Posting) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Title", "Price", "Author", "Status", "Link"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 48, WidthMaxEnforcer: text.WrapSoft},
	})
	for i, p := range postings {
		t.AppendRow(table.Row{i + 1, p.Title, p.Price, p.Author, p.Status, p.Link})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var showCmd = &cobra.Command{
	Use:   "show [--json]",
	Short: "Prints the stored snapshot.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setupApp(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to setup", err)
		}
		defer a.Close()

		postings, err := a.store.Load(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to load snapshot", err)
		}

		if *showJson {
			err = printJson(postings)
			if err != nil {
				serviceutil.Fatal("failed to print snapshot", err)
			}
			return
		}
		renderPostings(os.Stdout, postings)
	},
}
