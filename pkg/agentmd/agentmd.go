// Package agentmd parses AGENT.md files, the identity file of the Micro
// Agent folder convention. The format is deliberately schema-free: the
// parser splits the markdown into a section tree by heading, extracts the
// recognized sections (Tools, Workspace, Workflows, Environment) into typed
// declarations, and retains everything else as opaque content. Parsing
// never fails on malformed markdown; constructs that cannot be classified
// are recorded as warnings and skipped.
package agentmd

// Meta holds the optional YAML frontmatter of an AGENT.md file. The
// convention does not require frontmatter, so both fields may be empty.
type Meta struct {
	Name        string
	Description string
}

// BlockKind discriminates the content blocks retained inside a Section.
type BlockKind int

const (
	// BlockParagraph is running prose, one logical line per entry.
	BlockParagraph BlockKind = iota
	// BlockList is a bullet or ordered list, one item text per entry.
	BlockList
	// BlockCode is a fenced or indented code block, raw line per entry.
	BlockCode
)

// Block is one content block within a section. Lines holds paragraph text,
// list item texts, or raw code lines depending on Kind.
type Block struct {
	Kind    BlockKind
	Lines   []string
	Ordered bool // list blocks only
}

// Section is a markdown heading with its content blocks and nested
// subsections, up to the next heading of equal or lesser level.
type Section struct {
	Level    int
	Title    string
	Blocks   []Block
	Children []*Section
}

// Tool is a tool documented under the Tools section: one child heading per
// tool, with the first code block taken as the invocation line.
type Tool struct {
	Name        string
	Description string
	Invocation  string
	Flags       []string
}

// WorkspaceEntry is a documented output path under workspace/, parsed from
// a Workspace list item of the form `path` — description.
type WorkspaceEntry struct {
	Path        string
	Description string
}

// Workflow is a named sequence of free-text steps. Steps may reference
// context files, tool names, or workspace paths.
type Workflow struct {
	Name  string
	Steps []string
}

// Warning records a markdown construct the parser could not classify or an
// item that did not match the documented grammar.
type Warning struct {
	Section string
	Message string
}

// Document is the parse result for one AGENT.md file.
type Document struct {
	Meta       Meta
	Preamble   []Block    // content before the first heading (identity prose)
	Sections   []*Section // top-level section tree in document order
	Recognized []string   // canonical sections found (Tools, Workspace, Workflows, Environment)

	Tools     []Tool
	Workspace []WorkspaceEntry
	Workflows []Workflow
	EnvVars   []string

	Warnings []Warning
}

// HasRecognizedSections reports whether any of the four canonical sections
// was found. An AGENT.md without any is technically valid but
// under-specified.
func (d *Document) HasRecognizedSections() bool {
	return len(d.Recognized) > 0
}
