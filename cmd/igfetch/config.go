package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igfetch/pkg/config"
	"igfetch/pkg/headers"
)

// configCmd prints the effective configuration after all sources merge
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, map[string]interface{}{
			"log-level": logLevel,
		})
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Print(string(data))
		return nil
	},
}

// profilesCmd lists the browser header profiles available for pinning
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available browser header profiles",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range headers.Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(profilesCmd)
}
