package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podscribe/podscribe/internal/model"
)

var askCmd = &cobra.Command{
	Use:   "ask <audio-file> <question>",
	Short: "Ask a question grounded in a recording",
	Long: "Processes the recording if needed (cached stages make reruns cheap),\n" +
		"then answers the question using the most relevant transcript chunks.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		p, store, err := newPipeline(cfg)
		if err != nil {
			exitErr("setup", err)
		}
		defer store.Close()

		if _, err := p.Process(cmd.Context(), args[0]); err != nil {
			exitErr("process", err)
		}
		answer := p.Ask(cmd.Context(), args[1])
		saveLog(cfg, p.LogEntries())

		if formatFlag == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(model.QA{Question: args[1], Answer: answer}); err != nil {
				exitErr("encode", err)
			}
			return
		}
		fmt.Println(answer)
	},
}

func init() {
	RootCmd.AddCommand(askCmd)
}
