// Package rules applies the Micro Agent conformance rules to a layout scan
// and a parsed AGENT.md, producing an ordered sequence of findings. Rules
// are independent and evaluated once per run; only a missing AGENT.md is
// fatal and short-circuits the rest.
package rules

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/agentlint/agentlint/pkg/agentmd"
	"github.com/agentlint/agentlint/pkg/layout"
)

// Severity of a finding. Fatal aborts the run, errors fail the overall
// result, warnings do not.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Level selects which conformance checklist applies. The minimum level
// requires only AGENT.md and a tools/ directory backing the documented
// tools; the complete level additionally requires context/, workspace/, and
// README.md.
type Level string

const (
	LevelMinimum  Level = "minimum"
	LevelComplete Level = "complete"
)

// ParseLevel validates a conformance level string.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelMinimum, LevelComplete:
		return Level(s), nil
	}
	return "", errors.Errorf("invalid conformance level %q, must be one of: minimum, complete", s)
}

// Rule identifiers, stable across releases so reports can be filtered on
// them.
const (
	RuleAgentMDMissing        = "agent-md-missing"
	RuleToolsDirMissing       = "tools-dir-missing"
	RuleToolScriptMissing     = "tool-script-missing"
	RuleToolNoInvocation      = "tool-no-invocation"
	RuleToolInvocationUnclear = "tool-invocation-ambiguous"
	RuleWorkflowContext       = "workflow-context-missing"
	RuleEnvExampleMissing     = "env-example-missing"
	RuleEnvVarUndocumented    = "env-var-undocumented"
	RuleNoRecognizedSections  = "no-recognized-sections"
	RuleContextDirMissing     = "context-dir-missing"
	RuleWorkspaceDirMissing   = "workspace-dir-missing"
	RuleReadmeMissing         = "readme-missing"
	RuleAgentMDUnparsed       = "agent-md-unparsed"
	RuleLayoutWalk            = "layout-walk"
)

// Finding is one conformance result produced by the checker.
type Finding struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
}

// Check evaluates the conformance rules in order against a layout scan and
// the parsed AGENT.md. doc may be nil when AGENT.md was absent, in which
// case the single fatal finding is returned and nothing else runs.
func Check(l *layout.Layout, doc *agentmd.Document, level Level) []Finding {
	if !l.Has(layout.EntryAgentMD) {
		return []Finding{{
			Severity: SeverityFatal,
			Rule:     RuleAgentMDMissing,
			Message:  "AGENT.md not found; the identity file is required",
			Path:     "AGENT.md",
		}}
	}

	var findings []Finding

	for _, w := range l.Warnings {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Rule:     RuleLayoutWalk,
			Message:  w,
		})
	}

	if doc != nil {
		for _, w := range doc.Warnings {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     RuleAgentMDUnparsed,
				Message:  fmt.Sprintf("%s (in %s)", w.Message, w.Section),
				Path:     "AGENT.md",
			})
		}

		findings = append(findings, checkTools(l, doc)...)
		findings = append(findings, checkWorkflows(l, doc)...)
		findings = append(findings, checkEnvironment(l, doc)...)

		if !doc.HasRecognizedSections() {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     RuleNoRecognizedSections,
				Message:  "AGENT.md has no recognized sections; agent may be under-specified",
				Path:     "AGENT.md",
			})
		}
	}

	if level == LevelComplete {
		findings = append(findings, checkComplete(l)...)
	}

	return findings
}

func checkTools(l *layout.Layout, doc *agentmd.Document) []Finding {
	var findings []Finding

	if len(doc.Tools) > 0 && !l.Has(layout.EntryToolsDir) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Rule:     RuleToolsDirMissing,
			Message:  fmt.Sprintf("%d tool(s) documented but tools/ directory is missing", len(doc.Tools)),
			Path:     "tools",
		})
	}

	for _, tool := range doc.Tools {
		if tool.Invocation == "" {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     RuleToolNoInvocation,
				Message:  fmt.Sprintf("tool %q has no invocation code block", tool.Name),
			})
			continue
		}

		script := ExtractScriptPath(tool.Invocation)
		if script == "" {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     RuleToolInvocationUnclear,
				Message:  fmt.Sprintf("tool %q invocation %q has no recognizable script path", tool.Name, tool.Invocation),
			})
			continue
		}

		if !scriptExists(l, script) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Rule:     RuleToolScriptMissing,
				Message:  fmt.Sprintf("tool %q references missing script %q", tool.Name, script),
				Path:     script,
			})
		}
	}

	return findings
}

func checkWorkflows(l *layout.Layout, doc *agentmd.Document) []Finding {
	var findings []Finding

	for _, wf := range doc.Workflows {
		for _, step := range wf.Steps {
			for _, ref := range contextRefs(step) {
				if !l.HasContextFile(ref) {
					findings = append(findings, Finding{
						Severity: SeverityWarning,
						Rule:     RuleWorkflowContext,
						Message:  fmt.Sprintf("workflow %q references missing context file %q", wf.Name, ref),
						Path:     ref,
					})
				}
			}
			// workspace/ references are never checked: the workspace is
			// created lazily by the agent at runtime.
		}
	}

	return findings
}

func checkEnvironment(l *layout.Layout, doc *agentmd.Document) []Finding {
	var findings []Finding

	if len(doc.EnvVars) > 0 && !l.Has(layout.EntryEnvExample) {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Rule:     RuleEnvExampleMissing,
			Message:  "environment variables documented but no .env.example provided",
			Path:     ".env.example",
		})
	}

	if l.Has(layout.EntryEnvExample) && len(doc.EnvVars) > 0 {
		documented := make(map[string]bool, len(doc.EnvVars))
		for _, name := range doc.EnvVars {
			documented[name] = true
		}
		for _, name := range l.EnvExampleVars {
			if !documented[name] {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Rule:     RuleEnvVarUndocumented,
					Message:  fmt.Sprintf(".env.example declares %s but the Environment section does not document it", name),
					Path:     ".env.example",
				})
			}
		}
	}

	return findings
}

func checkComplete(l *layout.Layout) []Finding {
	var findings []Finding

	if !l.Has(layout.EntryContextDir) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Rule:     RuleContextDirMissing,
			Message:  "complete conformance requires a context/ directory",
			Path:     "context",
		})
	}
	if !l.Has(layout.EntryWorkspaceDir) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Rule:     RuleWorkspaceDirMissing,
			Message:  "complete conformance requires a workspace/ directory",
			Path:     "workspace",
		})
	}
	if !l.Has(layout.EntryReadme) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Rule:     RuleReadmeMissing,
			Message:  "complete conformance requires a README.md",
			Path:     "README.md",
		})
	}

	return findings
}

func scriptExists(l *layout.Layout, script string) bool {
	if l.HasToolScript(script) {
		return true
	}
	// Invocations are written relative to the agent root, but tolerate
	// paths written relative to tools/ itself.
	return l.HasToolScript("tools/" + script)
}
