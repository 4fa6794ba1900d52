package rules

import (
	"path"
	"regexp"
	"strings"
)

// Interpreter and runner tokens that may prefix a script path in a tool
// invocation line.
var interpreterPrefixes = map[string]bool{
	"python":  true,
	"python3": true,
	"node":    true,
	"bash":    true,
	"sh":      true,
	"ruby":    true,
	"deno":    true,
	"npx":     true,
	"uv":      true,
	"uvx":     true,
	"bun":     true,
	"go":      true,
}

// Subcommands of runners that sit between the runner and the script path,
// as in "uv run tools/search.py".
var runnerSubcommands = map[string]bool{
	"run": true,
}

var scriptExtRe = regexp.MustCompile(`\.(py|sh|bash|js|mjs|ts|rb|pl)$`)

var envAssignTokenRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// ExtractScriptPath pulls the first path-like token out of a tool
// invocation line. The match is best-effort and textual: either the token
// following a known interpreter/runner prefix, or the first token carrying
// a known script extension. Returns "" when no candidate is found.
func ExtractScriptPath(invocation string) string {
	fields := strings.Fields(invocation)

	// Leading VAR=value assignments are shell environment, not the command.
	for len(fields) > 0 && envAssignTokenRe.MatchString(fields[0]) {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return ""
	}

	if interpreterPrefixes[fields[0]] {
		for _, tok := range fields[1:] {
			if strings.HasPrefix(tok, "-") || runnerSubcommands[tok] {
				continue
			}
			return cleanScriptPath(tok)
		}
		return ""
	}

	for _, tok := range fields {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		if scriptExtRe.MatchString(tok) || strings.HasPrefix(tok, "tools/") || strings.HasPrefix(tok, "./tools/") {
			return cleanScriptPath(tok)
		}
	}

	return ""
}

func cleanScriptPath(tok string) string {
	tok = strings.Trim(tok, "\"'`")
	return path.Clean(strings.TrimPrefix(tok, "./"))
}

var backtickPathRe = regexp.MustCompile("`([^`]+)`")

// contextRefs returns the backtick-quoted context/ paths referenced by a
// workflow step.
func contextRefs(step string) []string {
	var refs []string
	for _, m := range backtickPathRe.FindAllStringSubmatch(step, -1) {
		p := path.Clean(strings.TrimPrefix(m[1], "./"))
		if strings.HasPrefix(p, "context/") {
			refs = append(refs, p)
		}
	}
	return refs
}
