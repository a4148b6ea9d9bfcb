package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podscribe/podscribe/internal/cache"
)

var topK int

var queryCmd = &cobra.Command{
	Use:   "query <audio-file> <text>",
	Short: "Show the most relevant indexed chunks for a query",
	Long: "Looks up the recording's embedding collection by content hash and\n" +
		"prints the top-k chunks with relevance scores. An unprocessed\n" +
		"recording has no collection and returns no results.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, err := openRetrieval(cfg)
		if err != nil {
			exitErr("setup", err)
		}
		defer store.Close()

		fileID, err := cache.HashFile(args[0])
		if err != nil {
			exitErr("identify recording", err)
		}

		results, err := store.Query(cmd.Context(), fileID, args[1], topK)
		if err != nil {
			exitErr("query", err)
		}

		if formatFlag == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				exitErr("encode", err)
			}
			return
		}
		if len(results) == 0 {
			fmt.Println("no results (recording not processed yet?)")
			return
		}
		for i, r := range results {
			fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, r.Text)
		}
	},
}

func init() {
	queryCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to return (default 3)")
	RootCmd.AddCommand(queryCmd)
}
