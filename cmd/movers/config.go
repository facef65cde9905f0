package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"movers/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDirFlag)
		if err != nil {
			return err
		}
		// Don't print the credential itself
		if cfg.Jira.APIToken != "" {
			cfg.Jira.APIToken = "(set)"
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter movers.yaml with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := configDirFlag
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, "movers.yaml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		data, err := yaml.Marshal(config.DefaultConfig())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
		fmt.Println("Set JIRA_BASE_URL, JIRA_EMAIL and JIRA_API_TOKEN in the environment.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
