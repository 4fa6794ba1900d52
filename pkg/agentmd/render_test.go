package agentmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDocument() *Document {
	return Build(
		Meta{Name: "researcher", Description: "Finds things out."},
		[]Tool{
			{
				Name:        "search_videos",
				Description: "Searches for videos.",
				Invocation:  "python tools/youtube.py search_videos",
				Flags:       []string{"`--json` — emit machine-readable output"},
			},
			{
				Name:       "transcribe",
				Invocation: "tools/transcribe.sh URL",
			},
		},
		[]WorkspaceEntry{
			{Path: "workspace/findings.md", Description: "summarized findings"},
		},
		[]Workflow{
			{Name: "research", Steps: []string{"Read `context/style.md`.", "Run search_videos.", "Write to `workspace/findings.md`."}},
		},
		[]string{"YOUTUBE_API_KEY"},
	)
}

func TestRoundTrip(t *testing.T) {
	built := buildTestDocument()
	rendered := built.Render()

	parsed := Parse([]byte(rendered))

	assert.Equal(t, built.Recognized, parsed.Recognized)

	require.Len(t, parsed.Tools, len(built.Tools))
	for i, tool := range built.Tools {
		assert.Equal(t, tool.Name, parsed.Tools[i].Name)
		assert.Equal(t, tool.Invocation, parsed.Tools[i].Invocation)
		assert.Len(t, parsed.Tools[i].Flags, len(tool.Flags))
	}

	assert.Equal(t, built.Workspace, parsed.Workspace)

	require.Len(t, parsed.Workflows, len(built.Workflows))
	assert.Equal(t, built.Workflows[0].Name, parsed.Workflows[0].Name)
	assert.Equal(t, built.Workflows[0].Steps, parsed.Workflows[0].Steps)

	assert.Equal(t, built.EnvVars, parsed.EnvVars)
	assert.Empty(t, parsed.Warnings)
}

func TestRoundTrip_SectionStructure(t *testing.T) {
	built := buildTestDocument()
	parsed := Parse([]byte(built.Render()))

	require.Len(t, parsed.Sections, len(built.Sections))
	assertSectionsEqual(t, built.Sections, parsed.Sections)
}

func assertSectionsEqual(t *testing.T, want, got []*Section) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Level, got[i].Level)
		assertSectionsEqual(t, want[i].Children, got[i].Children)
	}
}

func TestRender_ParsedDocumentReparses(t *testing.T) {
	source := `# Agent

Identity paragraph.

## Tools

### probe

` + "```" + `
bash tools/probe.sh
` + "```" + `
`
	first := Parse([]byte(source))
	second := Parse([]byte(first.Render()))

	assertSectionsEqual(t, first.Sections, second.Sections)
	assert.Equal(t, first.Tools, second.Tools)
}

func TestRender_Deterministic(t *testing.T) {
	built := buildTestDocument()
	assert.Equal(t, built.Render(), built.Render())
}

func TestBuild_EmptyDeclarations(t *testing.T) {
	doc := Build(Meta{Name: "bare"}, nil, nil, nil, nil)

	assert.Empty(t, doc.Recognized)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "bare", doc.Sections[0].Title)
	assert.Empty(t, doc.Sections[0].Children)
}
