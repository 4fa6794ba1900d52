// Package scaffold creates a new Micro Agent directory conforming to the
// folder convention: AGENT.md, tools/, context/, workspace/, .env.example,
// and README.md, populated with a working sample tool.
package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Config controls the scaffolded agent.
type Config struct {
	Name        string
	Description string
	Force       bool
}

const agentTemplate = `# {{.Name}}

{{.Description}}

## Tools

### hello

Prints a greeting. Replace this with the agent's real tools.

` + "```" + `
bash tools/hello.sh
` + "```" + `

- ` + "`--json`" + ` — emit machine-readable output

## Workspace

- ` + "`workspace/notes.md`" + ` — running notes the agent keeps between sessions

## Workflows

### greet

1. Read ` + "`context/about.md`" + ` for background.
2. Run the hello tool.
3. Write the result to ` + "`workspace/notes.md`" + `.

## Environment

` + "```" + `
AGENT_HOME=
` + "```" + `
`

const helloScript = `#!/usr/bin/env bash
set -euo pipefail

if [[ "${1:-}" == "--json" ]]; then
  echo '{"greeting": "hello"}'
else
  echo "hello"
fi
`

const readmeTemplate = `# {{.Name}}

{{.Description}}

This directory follows the Micro Agent convention: the agent's identity
lives in AGENT.md, its scripts under tools/, read-only reference material
under context/, and its output under workspace/.
`

const aboutContext = `# About

Reference material the agent reads before acting. Add project background,
style guides, and examples here.
`

const envExample = `AGENT_HOME=
`

// Create scaffolds a conforming agent directory at dir. Existing files are
// left untouched unless cfg.Force is set; independent file failures are
// aggregated so one bad write does not hide another.
func Create(dir string, cfg Config) error {
	if cfg.Name == "" {
		cfg.Name = filepath.Base(absOrSelf(dir))
	}
	if cfg.Description == "" {
		cfg.Description = "A Micro Agent. Describe what it does and how it behaves here."
	}

	for _, sub := range []string{"", "tools", "context", "workspace"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory '%s'", filepath.Join(dir, sub))
		}
	}

	agentMD, err := renderTemplate("agent", agentTemplate, cfg)
	if err != nil {
		return err
	}
	readme, err := renderTemplate("readme", readmeTemplate, cfg)
	if err != nil {
		return err
	}

	files := []struct {
		path    string
		content string
		mode    os.FileMode
	}{
		{"AGENT.md", agentMD, 0o644},
		{"README.md", readme, 0o644},
		{filepath.Join("tools", "hello.sh"), helloScript, 0o755},
		{filepath.Join("context", "about.md"), aboutContext, 0o644},
		{filepath.Join("workspace", ".gitkeep"), "", 0o644},
		{".env.example", envExample, 0o644},
	}

	var result *multierror.Error
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.path), f.content, f.mode, cfg.Force); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func renderTemplate(name, tmpl string, cfg Config) (string, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse %s template", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, cfg); err != nil {
		return "", errors.Wrapf(err, "failed to render %s template", name)
	}
	return buf.String(), nil
}

func writeFile(path, content string, mode os.FileMode, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("'%s' already exists, use --force to overwrite", path)
		}
	}
	return errors.Wrapf(os.WriteFile(path, []byte(content), mode), "failed to write '%s'", path)
}

func absOrSelf(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
