package agentmd

import (
	"fmt"
	"strings"
)

// Build constructs a Document with a synthesized section tree from typed
// declarations. The result renders to a canonical AGENT.md that parses back
// to the same structure.
func Build(m Meta, tools []Tool, workspace []WorkspaceEntry, workflows []Workflow, envVars []string) *Document {
	doc := &Document{
		Meta:      m,
		Tools:     tools,
		Workspace: workspace,
		Workflows: workflows,
		EnvVars:   envVars,
	}

	title := m.Name
	if title == "" {
		title = "Agent"
	}
	rootSec := &Section{Level: 1, Title: title}
	if m.Description != "" {
		rootSec.Blocks = append(rootSec.Blocks, Block{Kind: BlockParagraph, Lines: []string{m.Description}})
	}
	doc.Sections = append(doc.Sections, rootSec)

	if len(tools) > 0 {
		toolsSec := &Section{Level: 2, Title: "Tools"}
		for _, tool := range tools {
			child := &Section{Level: 3, Title: tool.Name}
			if tool.Description != "" {
				child.Blocks = append(child.Blocks, Block{Kind: BlockParagraph, Lines: strings.Split(tool.Description, "\n")})
			}
			if tool.Invocation != "" {
				child.Blocks = append(child.Blocks, Block{Kind: BlockCode, Lines: []string{tool.Invocation}})
			}
			if len(tool.Flags) > 0 {
				child.Blocks = append(child.Blocks, Block{Kind: BlockList, Lines: tool.Flags})
			}
			toolsSec.Children = append(toolsSec.Children, child)
		}
		rootSec.Children = append(rootSec.Children, toolsSec)
		doc.Recognized = append(doc.Recognized, "Tools")
	}

	if len(workspace) > 0 {
		wsSec := &Section{Level: 2, Title: "Workspace"}
		items := make([]string, 0, len(workspace))
		for _, entry := range workspace {
			items = append(items, fmt.Sprintf("`%s` — %s", entry.Path, entry.Description))
		}
		wsSec.Blocks = append(wsSec.Blocks, Block{Kind: BlockList, Lines: items})
		rootSec.Children = append(rootSec.Children, wsSec)
		doc.Recognized = append(doc.Recognized, "Workspace")
	}

	if len(workflows) > 0 {
		wfSec := &Section{Level: 2, Title: "Workflows"}
		for _, wf := range workflows {
			child := &Section{Level: 3, Title: wf.Name}
			if len(wf.Steps) > 0 {
				child.Blocks = append(child.Blocks, Block{Kind: BlockList, Lines: wf.Steps, Ordered: true})
			}
			wfSec.Children = append(wfSec.Children, child)
		}
		rootSec.Children = append(rootSec.Children, wfSec)
		doc.Recognized = append(doc.Recognized, "Workflows")
	}

	if len(envVars) > 0 {
		envSec := &Section{Level: 2, Title: "Environment"}
		lines := make([]string, 0, len(envVars))
		for _, name := range envVars {
			lines = append(lines, name+"=")
		}
		envSec.Blocks = append(envSec.Blocks, Block{Kind: BlockCode, Lines: lines})
		rootSec.Children = append(rootSec.Children, envSec)
		doc.Recognized = append(doc.Recognized, "Environment")
	}

	return doc
}

// Render serializes the document's section tree back to markdown. Opaque
// content is emitted as-is; the output parses back to an equivalent section
// structure.
func (d *Document) Render() string {
	var sb strings.Builder

	for _, b := range d.Preamble {
		renderBlock(&sb, b)
	}
	for _, sec := range d.Sections {
		renderSection(&sb, sec)
	}

	return sb.String()
}

func renderSection(sb *strings.Builder, sec *Section) {
	sb.WriteString(strings.Repeat("#", sec.Level))
	sb.WriteByte(' ')
	sb.WriteString(sec.Title)
	sb.WriteString("\n\n")

	for _, b := range sec.Blocks {
		renderBlock(sb, b)
	}
	for _, child := range sec.Children {
		renderSection(sb, child)
	}
}

func renderBlock(sb *strings.Builder, b Block) {
	switch b.Kind {
	case BlockParagraph:
		for _, line := range b.Lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	case BlockList:
		for i, item := range b.Lines {
			if b.Ordered {
				fmt.Fprintf(sb, "%d. %s\n", i+1, item)
			} else {
				fmt.Fprintf(sb, "- %s\n", item)
			}
		}
	case BlockCode:
		sb.WriteString("```\n")
		for _, line := range b.Lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteString("```\n")
	}
	sb.WriteByte('\n')
}
