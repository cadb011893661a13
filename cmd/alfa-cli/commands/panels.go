package commands

import (
	"fmt"
	"sort"

	"alfagate-backend/cmd/alfa-cli/utils"
	"alfagate-backend/lib/configutil"
	"alfagate-backend/lib/serviceutil"
	"alfagate-backend/lib/sqliteutil"
	"alfagate-backend/services/portal"
	"alfagate-backend/services/portal/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

type Config struct {
	Database string         `json:"database"`
	Portal   portal.Options `json:"portal"`
}

var cached *bool

func init() {
	cached = panelsCmd.Flags().Bool("cached", false, "Print the last recorded inventory instead of running a session.")
	rootCmd.AddCommand(panelsCmd)
}

var panelsCmd = &cobra.Command{
	Use:   "panels <username> <password>",
	Short: "Runs a login session and prints the account's panel inventory.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		database, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		service := portal.NewService(database, cfg.Portal)

		var result portal.SessionResult
		if *cached {
			result, err = service.GetPanels(cmd.Context(), args[0])
		} else {
			result, err = service.StartSession(cmd.Context(), portal.SessionRequest{
				Username: args[0],
				Password: args[1],
			})
		}
		if err != nil {
			serviceutil.Fatal("failed to get panels", err)
		}

		printPanels(result)
	},
}

func printPanels(result portal.SessionResult) {
	fmt.Printf("run %s, account %s", result.RunID, result.Username)
	if result.SinglePanelType {
		fmt.Print(" (single panel line type)")
	}
	fmt.Println()

	columns := panelColumns(result)

	t := utils.NewTable()
	header := table.Row{"MSISDNNumber"}
	for _, c := range columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for _, p := range result.Panels {
		row := table.Row{p.MSISDNNumber}
		for _, c := range columns {
			row = append(row, p.Fields[c])
		}
		t.AppendRow(row)
	}
	t.Render()
}

// panelColumns collects every field name seen across the inventory so
// sparse member objects still line up, identifier column excluded.
func panelColumns(result portal.SessionResult) []string {
	seen := map[string]bool{}
	for _, p := range result.Panels {
		for name := range p.Fields {
			if name != "MSISDNNumber" {
				seen[name] = true
			}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
