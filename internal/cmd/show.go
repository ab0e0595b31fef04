package cmd

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/hetulpatel/arbscanner/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration after defaults, the config file, .env and ARB_*
overrides have been applied. API keys and passwords are redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), *cfg)
	},
}

// ConfigCommand returns the config command for registration
func ConfigCommand() *cobra.Command {
	return configCmd
}

func writeConfig(w io.Writer, cfg config.Config) error {
	redact(&cfg.Redis.Password)
	redact(&cfg.Embeddings.APIKey)
	redact(&cfg.LLM.APIKey)
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}
