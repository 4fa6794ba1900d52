package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAgentDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "AGENT.md"), []byte("# Agent\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tools", "auth"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "context", "templates"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "workspace"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tools", "youtube.py"), []byte("#!/usr/bin/env python3\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tools", "auth", "setup.sh"), []byte("#!/bin/bash\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "context", "style.md"), []byte("# Style\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "context", "templates", "report.md"), []byte("# Report\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.example"), []byte("# keys\nYOUTUBE_API_KEY=\nexport OPENAI_API_KEY=\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Readme\n"), 0o644))

	return dir
}

func TestScan(t *testing.T) {
	dir := writeAgentDir(t)

	scanner, err := NewScanner()
	require.NoError(t, err)

	l, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, l.Has(EntryAgentMD))
	assert.True(t, l.Has(EntryToolsDir))
	assert.True(t, l.Has(EntryContextDir))
	assert.True(t, l.Has(EntryWorkspaceDir))
	assert.True(t, l.Has(EntryEnvExample))
	assert.True(t, l.Has(EntryReadme))

	assert.Equal(t, []string{"tools/auth/setup.sh", "tools/youtube.py"}, l.ToolScripts)
	assert.Equal(t, []string{"context/style.md", "context/templates/report.md"}, l.ContextFiles)
	assert.Equal(t, []string{"YOUTUBE_API_KEY", "OPENAI_API_KEY"}, l.EnvExampleVars)
	assert.Empty(t, l.Warnings)

	assert.True(t, l.HasToolScript("tools/youtube.py"))
	assert.False(t, l.HasToolScript("tools/missing.py"))
	assert.True(t, l.HasContextFile("context/style.md"))
}

func TestScan_MinimalDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AGENT.md"), []byte("# Agent\n"), 0o644))

	scanner, err := NewScanner()
	require.NoError(t, err)

	l, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, l.Has(EntryAgentMD))
	assert.False(t, l.Has(EntryToolsDir))
	assert.Empty(t, l.ToolScripts)
	assert.Empty(t, l.ContextFiles)
}

func TestScan_OtherEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))

	scanner, err := NewScanner()
	require.NoError(t, err)

	l, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, l.Entries, 2)
	for _, e := range l.Entries {
		assert.Equal(t, EntryOther, e.Kind)
	}
}

func TestScan_NotFound(t *testing.T) {
	scanner, err := NewScanner()
	require.NoError(t, err)

	t.Run("missing path", func(t *testing.T) {
		_, err := scanner.Scan(context.Background(), "/non/existent/path")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("path is a file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "AGENT.md")
		require.NoError(t, os.WriteFile(file, []byte("# Agent\n"), 0o644))

		_, err := scanner.Scan(context.Background(), file)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestScan_IgnorePatterns(t *testing.T) {
	dir := writeAgentDir(t)

	scanner, err := NewScanner(WithIgnorePatterns("tools/auth/**"))
	require.NoError(t, err)

	l, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"tools/youtube.py"}, l.ToolScripts)
}

func TestScan_InvalidIgnorePattern(t *testing.T) {
	_, err := NewScanner(WithIgnorePatterns("tools/[unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestScan_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AGENT.md"), []byte("# Agent\n"), 0o644))

	deep := filepath.Join(dir, "tools", "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "deep.sh"), []byte("#!/bin/bash\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tools", "shallow.sh"), []byte("#!/bin/bash\n"), 0o755))

	scanner, err := NewScanner(WithMaxDepth(2))
	require.NoError(t, err)

	l, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"tools/shallow.sh"}, l.ToolScripts)
	require.Len(t, l.Warnings, 1)
	assert.Contains(t, l.Warnings[0], "deeper than 2 levels")
}

func TestScan_InvalidMaxDepth(t *testing.T) {
	_, err := NewScanner(WithMaxDepth(0))
	require.Error(t, err)
}

func TestScan_Idempotent(t *testing.T) {
	dir := writeAgentDir(t)

	scanner, err := NewScanner()
	require.NoError(t, err)

	first, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
