package agentmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullAgentMD = `# Video Researcher

Finds and summarizes videos on a topic. Prefers primary sources and keeps
its notes short.

## Tools

### search_videos

Searches for videos matching a query.

` + "```" + `
python tools/youtube.py search_videos --query QUERY
` + "```" + `

- ` + "`--json`" + ` — emit machine-readable output
- ` + "`--limit N`" + ` — cap the number of results

### transcribe

` + "```" + `
tools/transcribe.sh VIDEO_URL
` + "```" + `

## Workspace

- ` + "`workspace/findings.md`" + ` — summarized findings per topic
- ` + "`workspace/raw/`" + ` — raw transcripts
- this item has no path and should be skipped

## Workflows

### research

1. Read ` + "`context/style.md`" + ` for the house style.
2. Run search_videos for the topic.
3. Write findings to ` + "`workspace/findings.md`" + `.

## Environment

` + "```" + `
export YOUTUBE_API_KEY=...
OPENAI_API_KEY=
` + "```" + `
`

func TestParse_FullDocument(t *testing.T) {
	doc := Parse([]byte(fullAgentMD))

	assert.Equal(t, []string{"Tools", "Workspace", "Workflows", "Environment"}, doc.Recognized)
	assert.True(t, doc.HasRecognizedSections())

	require.Len(t, doc.Tools, 2)
	assert.Equal(t, "search_videos", doc.Tools[0].Name)
	assert.Equal(t, "python tools/youtube.py search_videos --query QUERY", doc.Tools[0].Invocation)
	assert.Contains(t, doc.Tools[0].Description, "Searches for videos")
	assert.Len(t, doc.Tools[0].Flags, 2)
	assert.Contains(t, doc.Tools[0].Flags[0], "--json")

	assert.Equal(t, "transcribe", doc.Tools[1].Name)
	assert.Equal(t, "tools/transcribe.sh VIDEO_URL", doc.Tools[1].Invocation)
	assert.Empty(t, doc.Tools[1].Description)

	require.Len(t, doc.Workspace, 2)
	assert.Equal(t, "workspace/findings.md", doc.Workspace[0].Path)
	assert.Equal(t, "summarized findings per topic", doc.Workspace[0].Description)
	assert.Equal(t, "workspace/raw/", doc.Workspace[1].Path)

	require.Len(t, doc.Workflows, 1)
	assert.Equal(t, "research", doc.Workflows[0].Name)
	require.Len(t, doc.Workflows[0].Steps, 3)
	assert.Contains(t, doc.Workflows[0].Steps[0], "`context/style.md`")

	assert.Equal(t, []string{"YOUTUBE_API_KEY", "OPENAI_API_KEY"}, doc.EnvVars)
}

func TestParse_WorkspaceItemWithoutPathWarns(t *testing.T) {
	doc := Parse([]byte(fullAgentMD))

	var found bool
	for _, w := range doc.Warnings {
		if w.Section == "Workspace" {
			found = true
			assert.Contains(t, w.Message, "no backtick-quoted path")
		}
	}
	assert.True(t, found, "expected a warning for the pathless workspace item")
}

func TestParse_IdentityOnly(t *testing.T) {
	source := `# Lone Agent

Just an identity paragraph. No tools, no workflows.
`
	doc := Parse([]byte(source))

	assert.False(t, doc.HasRecognizedSections())
	assert.Empty(t, doc.Tools)
	assert.Empty(t, doc.Workspace)
	assert.Empty(t, doc.Workflows)
	assert.Empty(t, doc.EnvVars)

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Lone Agent", doc.Sections[0].Title)
}

func TestParse_EmptyInput(t *testing.T) {
	doc := Parse(nil)

	assert.Empty(t, doc.Sections)
	assert.Empty(t, doc.Recognized)
	assert.False(t, doc.HasRecognizedSections())
}

func TestParse_CaseInsensitiveSections(t *testing.T) {
	source := `# Agent

## TOOLS

### probe

` + "```" + `
bash tools/probe.sh
` + "```" + `

## workflows

### go

1. Run probe.
`
	doc := Parse([]byte(source))

	assert.Equal(t, []string{"Tools", "Workflows"}, doc.Recognized)
	require.Len(t, doc.Tools, 1)
	assert.Equal(t, "probe", doc.Tools[0].Name)
	require.Len(t, doc.Workflows, 1)
}

func TestParse_ToolsAtTopLevel(t *testing.T) {
	// Sections at heading level 1 without a wrapping title section.
	source := `# Tools

## fetch

` + "```" + `
node tools/fetch.js URL
` + "```" + `
`
	doc := Parse([]byte(source))

	require.Len(t, doc.Tools, 1)
	assert.Equal(t, "fetch", doc.Tools[0].Name)
	assert.Equal(t, "node tools/fetch.js URL", doc.Tools[0].Invocation)
}

func TestParse_BacktickedToolHeading(t *testing.T) {
	source := "# Agent\n\n## Tools\n\n### `search`\n\n```\npython tools/search.py\n```\n"
	doc := Parse([]byte(source))

	require.Len(t, doc.Tools, 1)
	assert.Equal(t, "search", doc.Tools[0].Name)
}

func TestParse_Frontmatter(t *testing.T) {
	source := `---
name: researcher
description: Finds things out
---

# Researcher
`
	doc := Parse([]byte(source))

	assert.Equal(t, "researcher", doc.Meta.Name)
	assert.Equal(t, "Finds things out", doc.Meta.Description)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Researcher", doc.Sections[0].Title)
}

func TestParse_ToolWithoutInvocation(t *testing.T) {
	source := `# Agent

## Tools

### mystery

Described but never invoked.
`
	doc := Parse([]byte(source))

	require.Len(t, doc.Tools, 1)
	assert.Equal(t, "mystery", doc.Tools[0].Name)
	assert.Empty(t, doc.Tools[0].Invocation)
}

func TestParse_NeverFailsOnMalformedMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unclosed fence", "# A\n\n```\nnever closed"},
		{"only hashes", "#####\n###\n#"},
		{"html block", "# A\n\n<div>raw html</div>\n"},
		{"binary-ish garbage", "\x00\x01\x02 not markdown at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse([]byte(tt.source))
			assert.NotNil(t, doc)
		})
	}
}

func TestParse_UnclassifiedConstructWarns(t *testing.T) {
	source := `# Agent

> a blockquote the convention says nothing about
`
	doc := Parse([]byte(source))

	require.NotEmpty(t, doc.Warnings)
	assert.Contains(t, doc.Warnings[0].Message, "unclassified markdown construct")
	assert.Equal(t, "Agent", doc.Warnings[0].Section)
}

func TestParse_Determinism(t *testing.T) {
	first := Parse([]byte(fullAgentMD))
	second := Parse([]byte(fullAgentMD))

	assert.Equal(t, first, second)
}
