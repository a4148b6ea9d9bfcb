package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podscribe/podscribe/internal/model"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the interaction log of the most recent run",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := loadConfig()
		data, err := os.ReadFile(logPath(cfg))
		if os.IsNotExist(err) {
			fmt.Println("no interaction log yet (run process or ask first)")
			return
		}
		if err != nil {
			exitErr("read log", err)
		}

		if formatFlag == "json" {
			os.Stdout.Write(data)
			return
		}

		var entries []model.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			exitErr("parse log", err)
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n%s\n\n", e.At.Format("2006-01-02 15:04:05"), e.Role, e.Content)
		}
	},
}

func init() {
	RootCmd.AddCommand(logCmd)
}
