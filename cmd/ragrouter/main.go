package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ragrouter/internal/config"
	"github.com/kailas-cloud/ragrouter/internal/version"
)

var (
	envName    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ragrouter",
	Short: "Router agent RAG over Azure OpenAI",
	Long: `ragrouter classifies each question into an intent, runs the retrieval and
generation tools that intent calls for, and fuses their output into one answer.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "explicit config file (overrides --env)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config selected by the persistent flags.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(envName)
}
