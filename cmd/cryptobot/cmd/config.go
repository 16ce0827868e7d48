package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Commands for creating and validating run configuration files.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the default settings",
	Long: `Write the default configuration. The format follows the extension:
.yaml/.yml for YAML, anything else for JSON.

Examples:
  cryptobot config init
  cryptobot config init run.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration after file, .env and environment",
	RunE:  runConfigShow,
}

var configForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "cryptobot.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if !configForce && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Default().SaveToFile(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (strategy %s, journal %s)\n", args[0], cfg.Strategy.Name, journalType(cfg))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeYAML(cmd.OutOrStdout(), cfg)
}

func journalType(cfg *config.Config) string {
	if cfg.Journal.Type == "" {
		return "none"
	}
	return string(cfg.Journal.Type)
}
