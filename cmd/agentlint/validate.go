package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/agentlint/agentlint/pkg/agentmd"
	"github.com/agentlint/agentlint/pkg/layout"
	"github.com/agentlint/agentlint/pkg/presenter"
	"github.com/agentlint/agentlint/pkg/report"
	"github.com/agentlint/agentlint/pkg/rules"
)

// Exit codes of the validate command.
const (
	exitPass    = 0
	exitFail    = 1
	exitInvalid = 2
)

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Level    string
	JSON     bool
	Quiet    bool
	Ignore   []string
	Watch    bool
	Debounce int
}

// NewValidateConfig creates a new ValidateConfig with default values
func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		Level:    string(rules.LevelMinimum),
		JSON:     false,
		Quiet:    false,
		Ignore:   []string{},
		Watch:    false,
		Debounce: 500,
	}
}

// Validate validates the ValidateConfig and returns an error if invalid
func (c *ValidateConfig) Validate() error {
	if _, err := rules.ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Debounce < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.Debounce)
	}
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate a directory against the Micro Agent convention",
	Long: `Validate a directory against the Micro Agent folder convention and
report conformance findings.

The minimum level requires AGENT.md and a tools/ directory backing every
documented tool. The complete level additionally requires context/,
workspace/, and README.md.

Exit codes: 0 on pass, 1 on any error-level finding, 2 on invocation
failure (target missing or not a directory).

Examples:
  agentlint validate ./my-agent
  agentlint validate ./my-agent --level complete
  agentlint validate ./my-agent --json
  agentlint validate ./my-agent --watch`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		config := getValidateConfigFromFlags(cmd)
		presenter.SetQuiet(config.Quiet)

		if err := config.Validate(); err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(exitInvalid)
		}

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		if config.Watch {
			runWatchMode(ctx, target, config)
			return
		}

		rep, err := runValidation(ctx, target, config)
		if err != nil {
			presenter.Error(err, "Validation failed")
			os.Exit(exitInvalid)
		}

		if err := emitReport(rep, config); err != nil {
			presenter.Error(err, "Failed to emit report")
			os.Exit(exitInvalid)
		}

		os.Exit(exitCodeFor(rep))
	},
}

func init() {
	defaults := NewValidateConfig()
	validateCmd.Flags().StringP("level", "l", defaults.Level, "Conformance level (minimum, complete)")
	validateCmd.Flags().Bool("json", defaults.JSON, "Emit the report as JSON")
	validateCmd.Flags().BoolP("quiet", "q", defaults.Quiet, "Suppress everything except the report")
	validateCmd.Flags().StringSliceP("ignore", "i", defaults.Ignore, "Glob patterns for tools/context entries to exclude (e.g. 'tools/auth/**')")
	validateCmd.Flags().BoolP("watch", "w", defaults.Watch, "Re-validate whenever the target changes")
	validateCmd.Flags().IntP("debounce", "d", defaults.Debounce, "Debounce time in milliseconds for watch mode")

	rootCmd.AddCommand(validateCmd)
}

// getValidateConfigFromFlags extracts validate configuration from command flags
func getValidateConfigFromFlags(cmd *cobra.Command) *ValidateConfig {
	config := NewValidateConfig()

	if level, err := cmd.Flags().GetString("level"); err == nil {
		config.Level = level
	}
	if jsonOut, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = jsonOut
	}
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		config.Quiet = quiet
	}
	if ignore, err := cmd.Flags().GetStringSlice("ignore"); err == nil {
		config.Ignore = ignore
	}
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.Debounce = debounce
	}

	return config
}

// runValidation performs one scan-parse-check pass over the target.
func runValidation(ctx context.Context, target string, config *ValidateConfig) (*report.Report, error) {
	level, err := rules.ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	scanner, err := layout.NewScanner(layout.WithIgnorePatterns(config.Ignore...))
	if err != nil {
		return nil, err
	}

	l, err := scanner.Scan(ctx, target)
	if err != nil {
		return nil, err
	}

	var doc *agentmd.Document
	if l.Has(layout.EntryAgentMD) {
		doc, err = agentmd.ParseFile(filepath.Join(target, "AGENT.md"))
		if err != nil {
			return nil, err
		}
	}

	findings := rules.Check(l, doc, level)
	return report.New(target, level, findings), nil
}

func emitReport(rep *report.Report, config *ValidateConfig) error {
	if config.JSON {
		out, err := rep.JSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	return rep.WriteText(os.Stdout)
}

func exitCodeFor(rep *report.Report) int {
	if rep.Pass {
		return exitPass
	}
	return exitFail
}
