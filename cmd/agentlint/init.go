package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentlint/agentlint/pkg/presenter"
	"github.com/agentlint/agentlint/pkg/scaffold"
)

// InitConfig holds configuration for the init command
type InitConfig struct {
	Name        string
	Description string
	Force       bool
}

// NewInitConfig creates a new InitConfig with default values
func NewInitConfig() *InitConfig {
	return &InitConfig{}
}

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Scaffold a new Micro Agent directory",
	Long: `Scaffold a new Micro Agent directory conforming to the convention:
AGENT.md, tools/ with a sample script, context/, workspace/, .env.example,
and README.md.

Examples:
  agentlint init ./my-agent
  agentlint init ./my-agent --name researcher --description "Research assistant"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getInitConfigFromFlags(cmd)
		dir := args[0]

		presenter.Section("Micro Agent Setup")

		err := scaffold.Create(dir, scaffold.Config{
			Name:        config.Name,
			Description: config.Description,
			Force:       config.Force,
		})
		if err != nil {
			presenter.Error(err, "Failed to scaffold agent")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Created Micro Agent in %s", dir))
		presenter.Info("Edit AGENT.md to describe the agent, then run:")
		presenter.Info(fmt.Sprintf("  agentlint validate %s --level complete", dir))
	},
}

func init() {
	defaults := NewInitConfig()
	initCmd.Flags().StringP("name", "n", defaults.Name, "Agent name (defaults to the directory name)")
	initCmd.Flags().StringP("description", "d", defaults.Description, "One-line agent description")
	initCmd.Flags().BoolP("force", "f", defaults.Force, "Overwrite existing files")

	rootCmd.AddCommand(initCmd)
}

// getInitConfigFromFlags extracts init configuration from command flags
func getInitConfigFromFlags(cmd *cobra.Command) *InitConfig {
	config := NewInitConfig()

	if name, err := cmd.Flags().GetString("name"); err == nil {
		config.Name = name
	}
	if description, err := cmd.Flags().GetString("description"); err == nil {
		config.Description = description
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}

	return config
}
