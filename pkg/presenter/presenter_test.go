package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := NewWithOptions(&out, &errOut, ColorNever)
	return p, &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("with context", func(t *testing.T) {
		p, out, errOut := newTestPresenter()
		p.Error(errors.New("no such directory"), "Failed to scan target")

		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "[ERROR] Failed to scan target: no such directory")
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(nil, "context")
		assert.Empty(t, errOut.String())
	})

	t.Run("shown even in quiet mode", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.SetQuiet(true)
		p.Error(errors.New("boom"), "")
		assert.Contains(t, errOut.String(), "boom")
	})
}

func TestMessages(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("validation passed")
	p.Warning("no recognized sections")
	p.Info("scanning ./agent")

	output := out.String()
	assert.Contains(t, output, "✓ validation passed")
	assert.Contains(t, output, "⚠ no recognized sections")
	assert.Contains(t, output, "scanning ./agent")
}

func TestQuietMode(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.SetQuiet(true)

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()

	assert.Empty(t, out.String())
	assert.True(t, p.IsQuiet())
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Findings")

	assert.Contains(t, out.String(), "Findings\n--------\n")
}
