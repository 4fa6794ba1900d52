package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentlint/agentlint/pkg/agentmd"
	"github.com/agentlint/agentlint/pkg/layout"
	"github.com/agentlint/agentlint/pkg/presenter"
	"github.com/agentlint/agentlint/pkg/rules"
)

var toolsCmd = &cobra.Command{
	Use:   "tools [dir]",
	Short: "List the tools documented in AGENT.md",
	Long: `List the tools documented in a Micro Agent's AGENT.md with their
invocation scripts and whether each script resolves under tools/.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		listToolsCmd(ctx, target)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func listToolsCmd(ctx context.Context, target string) {
	scanner, err := layout.NewScanner()
	if err != nil {
		presenter.Error(err, "Failed to initialize scanner")
		os.Exit(exitInvalid)
	}

	l, err := scanner.Scan(ctx, target)
	if err != nil {
		presenter.Error(err, "Failed to scan target")
		os.Exit(exitInvalid)
	}

	if !l.Has(layout.EntryAgentMD) {
		presenter.Error(fmt.Errorf("no AGENT.md in '%s'", target), "Not a Micro Agent directory")
		os.Exit(exitInvalid)
	}

	doc, err := agentmd.ParseFile(filepath.Join(target, "AGENT.md"))
	if err != nil {
		presenter.Error(err, "Failed to parse AGENT.md")
		os.Exit(exitInvalid)
	}

	if len(doc.Tools) == 0 {
		presenter.Info("No tools documented")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCRIPT\tSTATUS\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t------\t------\t-----------")

	for _, tool := range doc.Tools {
		script := rules.ExtractScriptPath(tool.Invocation)
		status := "ok"
		switch {
		case script == "":
			script = "-"
			status = "unresolved"
		case !l.HasToolScript(script) && !l.HasToolScript("tools/"+script):
			status = "missing"
		}

		description := tool.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tool.Name, script, status, description)
	}
	tw.Flush()
}
