package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentlint/agentlint/pkg/logger"
	"github.com/agentlint/agentlint/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("AGENTLINT")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentlint")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "agentlint",
	Short: "Conformance validator for the Micro Agent folder convention",
	Long: `agentlint checks a candidate directory against the Micro Agent folder
convention: an AGENT.md identity file, tool scripts under tools/, reference
material under context/, and agent output under workspace/.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Warning("Invalid log level, using default")
		}
		logger.SetLogFormat(viper.GetString("log_format"))
	},
	// Default behavior: a bare path argument validates that directory
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			validateCmd.Run(cmd, args)
		} else {
			cmd.Help()
			os.Exit(1)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(2)
	}
}
