package agentmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	// Workspace entries must start with a backtick-quoted path; the
	// separator between path and description is an em/en dash, hyphen, or
	// colon. Items not matching are skipped with a warning.
	workspaceEntryRe = regexp.MustCompile("^\\s*`([^`]+)`\\s*(?:[—–:-]+\\s*)?(.*)$")

	// Environment variables are assignment-like lines inside fenced or
	// indented code blocks: `export NAME=...` or `NAME=`.
	envAssignRe = regexp.MustCompile(`^\s*(?:export\s+)?([A-Z][A-Z0-9_]*)=`)
)

var canonicalSections = []string{"Tools", "Workspace", "Workflows", "Environment"}

// ParseFile reads and parses the AGENT.md at path.
func ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read agent file '%s'", path)
	}
	return Parse(content), nil
}

// Parse parses AGENT.md source into a Document. It never fails: malformed
// markdown degrades to warnings and the document carries whatever structure
// could be extracted.
func Parse(source []byte) *Document {
	doc := &Document{}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	pctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(source), parser.WithContext(pctx))

	if metaData := meta.Get(pctx); metaData != nil {
		if name, ok := metaData["name"].(string); ok {
			doc.Meta.Name = name
		}
		if description, ok := metaData["description"].(string); ok {
			doc.Meta.Description = description
		}
	}

	var stack []*Section
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			sec := &Section{
				Level: heading.Level,
				Title: strings.TrimSpace(inlineText(heading, source)),
			}
			for len(stack) > 0 && stack[len(stack)-1].Level >= heading.Level {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				doc.Sections = append(doc.Sections, sec)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, sec)
			}
			stack = append(stack, sec)
			continue
		}

		block, warn := classifyBlock(n, source)
		if warn != "" {
			doc.Warnings = append(doc.Warnings, Warning{
				Section: currentSectionTitle(stack),
				Message: warn,
			})
		}
		if block == nil {
			continue
		}
		if len(stack) == 0 {
			doc.Preamble = append(doc.Preamble, *block)
		} else {
			cur := stack[len(stack)-1]
			cur.Blocks = append(cur.Blocks, *block)
		}
	}

	doc.extract()
	return doc
}

func currentSectionTitle(stack []*Section) string {
	if len(stack) == 0 {
		return "preamble"
	}
	return stack[len(stack)-1].Title
}

// classifyBlock maps a top-level markdown node to a Block. Nodes with no
// structural meaning for the convention (thematic breaks, blank HTML) are
// dropped; anything unrecognized produces a warning instead of an error.
func classifyBlock(n ast.Node, source []byte) (*Block, string) {
	switch t := n.(type) {
	case *ast.Paragraph:
		return &Block{Kind: BlockParagraph, Lines: []string{inlineText(t, source)}}, ""
	case *ast.TextBlock:
		return &Block{Kind: BlockParagraph, Lines: []string{inlineText(t, source)}}, ""
	case *ast.List:
		b := &Block{Kind: BlockList, Ordered: t.IsOrdered()}
		for item := t.FirstChild(); item != nil; item = item.NextSibling() {
			b.Lines = append(b.Lines, listItemText(item, source))
		}
		return b, ""
	case *ast.FencedCodeBlock:
		return &Block{Kind: BlockCode, Lines: rawLines(t, source)}, ""
	case *ast.CodeBlock:
		return &Block{Kind: BlockCode, Lines: rawLines(t, source)}, ""
	case *ast.ThematicBreak:
		return nil, ""
	default:
		return nil, fmt.Sprintf("unclassified markdown construct: %s", n.Kind().String())
	}
}

// inlineText renders the inline children of a node back to plain text,
// preserving backticks around code spans so that path tokens keep the
// grammar the rule checker matches on.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.CodeSpan:
			sb.WriteByte('`')
			sb.WriteString(string(t.Text(source)))
			sb.WriteByte('`')
		case *ast.String:
			sb.Write(t.Value)
		case *ast.Emphasis, *ast.Link:
			sb.WriteString(inlineText(c, source))
		default:
			sb.WriteString(string(c.Text(source)))
		}
	}
	return strings.TrimSpace(sb.String())
}

// listItemText extracts the text of a list item's first block, ignoring
// nested sublists.
func listItemText(item ast.Node, source []byte) string {
	first := item.FirstChild()
	if first == nil {
		return ""
	}
	return inlineText(first, source)
}

func rawLines(n ast.Node, source []byte) []string {
	var lines []string
	segments := n.Lines()
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		lines = append(lines, strings.TrimRight(string(seg.Value(source)), "\n"))
	}
	return lines
}

// extract pulls typed declarations out of the section tree. Recognized
// sections are matched case-insensitively at any depth; the first match in
// document order wins, so both "## Tools" at the top level and "## Tools"
// under a "# AgentName" title section are found.
func (d *Document) extract() {
	for _, name := range canonicalSections {
		sec := findSection(d.Sections, name)
		if sec == nil {
			continue
		}
		d.Recognized = append(d.Recognized, name)
		switch name {
		case "Tools":
			d.extractTools(sec)
		case "Workspace":
			d.extractWorkspace(sec)
		case "Workflows":
			d.extractWorkflows(sec)
		case "Environment":
			d.extractEnv(sec)
		}
	}
}

func findSection(sections []*Section, title string) *Section {
	for _, sec := range sections {
		if strings.EqualFold(strings.Trim(sec.Title, "` "), title) {
			return sec
		}
		if found := findSection(sec.Children, title); found != nil {
			return found
		}
	}
	return nil
}

func (d *Document) extractTools(sec *Section) {
	for _, child := range sec.Children {
		tool := Tool{Name: strings.Trim(child.Title, "` ")}

		var descLines []string
		for _, b := range child.Blocks {
			switch b.Kind {
			case BlockCode:
				if tool.Invocation == "" {
					tool.Invocation = firstNonEmpty(b.Lines)
				}
			case BlockList:
				tool.Flags = append(tool.Flags, b.Lines...)
			case BlockParagraph:
				descLines = append(descLines, b.Lines...)
			}
		}
		tool.Description = strings.Join(descLines, "\n")
		d.Tools = append(d.Tools, tool)
	}
}

func (d *Document) extractWorkspace(sec *Section) {
	for _, item := range collectListItems(sec) {
		if item == "" {
			continue
		}
		m := workspaceEntryRe.FindStringSubmatch(item)
		if m == nil {
			d.Warnings = append(d.Warnings, Warning{
				Section: "Workspace",
				Message: fmt.Sprintf("workspace entry %q has no backtick-quoted path, skipping", item),
			})
			continue
		}
		d.Workspace = append(d.Workspace, WorkspaceEntry{
			Path:        m[1],
			Description: strings.TrimSpace(m[2]),
		})
	}
}

func (d *Document) extractWorkflows(sec *Section) {
	for _, child := range sec.Children {
		wf := Workflow{Name: strings.Trim(child.Title, "` ")}
		wf.Steps = append(wf.Steps, collectListItems(child)...)
		d.Workflows = append(d.Workflows, wf)
	}
}

func (d *Document) extractEnv(sec *Section) {
	seen := make(map[string]bool)
	for _, b := range collectBlocks(sec) {
		if b.Kind != BlockCode {
			continue
		}
		for _, line := range b.Lines {
			m := envAssignRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if !seen[m[1]] {
				seen[m[1]] = true
				d.EnvVars = append(d.EnvVars, m[1])
			}
		}
	}
}

// collectBlocks returns the section's blocks followed by its descendants'
// blocks in document order.
func collectBlocks(sec *Section) []Block {
	blocks := append([]Block{}, sec.Blocks...)
	for _, child := range sec.Children {
		blocks = append(blocks, collectBlocks(child)...)
	}
	return blocks
}

func collectListItems(sec *Section) []string {
	var items []string
	for _, b := range collectBlocks(sec) {
		if b.Kind == BlockList {
			items = append(items, b.Lines...)
		}
	}
	return items
}

func firstNonEmpty(lines []string) string {
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
