package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envConfigPath      = "STAFFGATE_CONFIG"
	fallbackConfigPath = "./staffgate.yaml"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "staffgate",
	Short: "Employee API façade over an unreliable upstream",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to the configuration file (json, yaml or toml)")
}

// resolveConfigPath prefers the flag, then the environment, then the fallback path.
func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}

	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}

	return fallbackConfigPath
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
