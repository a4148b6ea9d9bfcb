package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <audio-file>",
	Short: "Transcribe and analyze a recording",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		p, store, err := newPipeline(cfg)
		if err != nil {
			exitErr("setup", err)
		}
		defer store.Close()

		result, err := p.Process(cmd.Context(), args[0])
		if err != nil {
			exitErr("process", err)
		}
		saveLog(cfg, p.LogEntries())

		if formatFlag == "json" {
			out := struct {
				Result any `json:"result"`
				Log    any `json:"log"`
			}{result, p.LogEntries()}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				exitErr("encode", err)
			}
			return
		}

		fmt.Printf("file: %s\n\n", result.FileID)
		fmt.Println("== Transcript ==")
		fmt.Println(result.Transcript)
		for i, a := range result.Analyses {
			fmt.Printf("\n== Segment %d ==\n%s\n", i+1, a)
		}
	},
}

func init() {
	RootCmd.AddCommand(processCmd)
}
