package commands

import (
	"fmt"

	"alfagate-backend/lib/configutil"
	"alfagate-backend/lib/restyutil"
	"alfagate-backend/lib/scrapers/alfa"
	"alfagate-backend/lib/serviceutil"
	"alfagate-backend/services/portal"

	"github.com/spf13/cobra"
)

func alfaResult(client *alfa.Client, panels []alfa.Panel) portal.SessionResult {
	return portal.SessionResult{
		Username:        client.Username(),
		SinglePanelType: client.SinglePanelType,
		Panels:          panels,
	}
}

var checkStep *string
var checkTranscripts *string

func init() {
	checkStep = checkCmd.Flags().String("step", "full", "How far to run the flow: login, submit or full.")
	checkTranscripts = checkCmd.Flags().String("transcripts", "", "Directory to dump request/response transcripts to.")
	rootCmd.AddCommand(checkCmd)
}

// checkCmd runs the login flow step by step against the live portal, to
// diagnose which stage breaks when the portal changes its markup.
var checkCmd = &cobra.Command{
	Use:   "check <username> <password> [--step login|submit|full]",
	Short: "Runs the login flow step by step against the live portal.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if *checkTranscripts != "" {
			alfa.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(*checkTranscripts))
		}

		client, err := alfa.NewClient(alfa.ClientOptions{
			BaseUrl:       cfg.Portal.BaseUrl,
			Username:      args[0],
			Password:      args[1],
			Proxy:         cfg.Portal.Proxy,
			InsecureTLS:   cfg.Portal.InsecureTLS,
			BrowserBypass: cfg.Portal.BrowserBypass,
		})
		if err != nil {
			serviceutil.Fatal("failed to construct client", err)
		}

		ctx := cmd.Context()

		err = client.AcquireToken(ctx)
		if err != nil {
			serviceutil.Fatal("token acquisition", err)
		}
		fmt.Printf("token acquired: %s\n", client.Token)
		if *checkStep == "login" {
			return
		}

		err = client.SubmitCredentials(ctx)
		if err != nil {
			serviceutil.Fatal("credential submission", err)
		}
		fmt.Println("credentials accepted")
		if *checkStep == "submit" {
			return
		}

		panels, err := client.EnumeratePanels(ctx)
		if err != nil {
			serviceutil.Fatal("panel enumeration", err)
		}
		printPanels(alfaResult(client, panels))
	},
}
