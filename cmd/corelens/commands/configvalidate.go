package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corelens/rca-engine/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate corelens configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Load a configuration file and report whether it is valid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		fmt.Printf("%s: valid (store_backend=%s, llm_enabled=%t, tracing_enabled=%t, metrics_enabled=%t)\n",
			args[0], cfg.StoreBackend, cfg.LLMEnabled, cfg.TracingEnabled, cfg.MetricsEnabled)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
