// Package layout scans a candidate Micro Agent directory and records which
// convention entries are present: AGENT.md, tools/, context/, workspace/,
// .env.example, README.md. The scan is read-only and produces an immutable
// snapshot used by the rule checker.
package layout

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/agentlint/agentlint/pkg/logger"
)

// ErrNotFound indicates the target path does not exist or is not a directory.
var ErrNotFound = errors.New("target does not exist or is not a directory")

// EntryKind classifies a top-level entry of the scanned directory.
type EntryKind string

const (
	EntryAgentMD      EntryKind = "agent_md"
	EntryToolsDir     EntryKind = "tools_dir"
	EntryContextDir   EntryKind = "context_dir"
	EntryWorkspaceDir EntryKind = "workspace_dir"
	EntryEnvExample   EntryKind = "env_example"
	EntryReadme       EntryKind = "readme"
	EntryOther        EntryKind = "other"
)

// Entry is one top-level directory entry with its classification.
type Entry struct {
	Name string
	Kind EntryKind
	Dir  bool
}

// Layout is the immutable result of one scan.
type Layout struct {
	Root    string
	Entries []Entry

	// ToolScripts and ContextFiles are root-relative, slash-separated file
	// paths (e.g. "tools/youtube.py"), sorted for deterministic reports.
	ToolScripts  []string
	ContextFiles []string

	// EnvExampleVars are the variable names declared in .env.example,
	// in file order.
	EnvExampleVars []string

	// Warnings records degraded-but-acceptable scan conditions, such as
	// entries beyond the walk depth bound.
	Warnings []string
}

// Has reports whether an entry of the given kind is present.
func (l *Layout) Has(kind EntryKind) bool {
	for _, e := range l.Entries {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// HasToolScript reports whether the given root-relative path was found
// under tools/.
func (l *Layout) HasToolScript(path string) bool {
	return containsSorted(l.ToolScripts, path)
}

// HasContextFile reports whether the given root-relative path was found
// under context/.
func (l *Layout) HasContextFile(path string) bool {
	return containsSorted(l.ContextFiles, path)
}

func containsSorted(paths []string, path string) bool {
	i := sort.SearchStrings(paths, path)
	return i < len(paths) && paths[i] == path
}

// Scanner walks candidate directories. Zero or more ignore patterns exclude
// scanned tools/ and context/ entries from the resulting sets.
type Scanner struct {
	ignore   []glob.Glob
	maxDepth int
}

// Option is a function that configures a Scanner
type Option func(*Scanner) error

// WithIgnorePatterns excludes tools/ and context/ entries matching the given
// glob patterns (e.g. "tools/auth/**") from the scanned sets.
func WithIgnorePatterns(patterns ...string) Option {
	return func(s *Scanner) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return errors.Wrapf(err, "invalid ignore pattern %q", p)
			}
			s.ignore = append(s.ignore, g)
		}
		return nil
	}
}

// WithMaxDepth bounds the tools/ and context/ walks. Entries nested deeper
// are recorded as a warning rather than scanned, which guards against
// pathological symlink cycles.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) error {
		if depth < 1 {
			return errors.Errorf("max depth must be positive, got %d", depth)
		}
		s.maxDepth = depth
		return nil
	}
}

// NewScanner creates a new layout scanner
func NewScanner(opts ...Option) (*Scanner, error) {
	s := &Scanner{maxDepth: 12}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Scan classifies the top-level entries of root and walks tools/ and
// context/ for their file sets. It fails only when root is missing or not a
// directory; everything else degrades to warnings on the Layout.
func (s *Scanner) Scan(ctx context.Context, root string) (*Layout, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "cannot scan '%s'", root)
		}
		return nil, errors.Wrapf(err, "failed to stat '%s'", root)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotFound, "'%s' is not a directory", root)
	}

	l := &Layout{Root: root}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory '%s'", root)
	}

	for _, entry := range entries {
		l.Entries = append(l.Entries, Entry{
			Name: entry.Name(),
			Kind: classify(entry.Name(), entry.IsDir()),
			Dir:  entry.IsDir(),
		})
	}

	fsys := os.DirFS(root)
	if l.Has(EntryToolsDir) {
		l.ToolScripts = s.walk(ctx, fsys, "tools", l)
	}
	if l.Has(EntryContextDir) {
		l.ContextFiles = s.walk(ctx, fsys, "context", l)
	}
	if l.Has(EntryEnvExample) {
		l.EnvExampleVars = readEnvExample(ctx, root)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"root":          root,
		"tool_scripts":  len(l.ToolScripts),
		"context_files": len(l.ContextFiles),
	}).Debug("layout scan complete")

	return l, nil
}

func classify(name string, dir bool) EntryKind {
	if dir {
		switch name {
		case "tools":
			return EntryToolsDir
		case "context":
			return EntryContextDir
		case "workspace":
			return EntryWorkspaceDir
		}
		return EntryOther
	}
	switch name {
	case "AGENT.md":
		return EntryAgentMD
	case ".env.example":
		return EntryEnvExample
	case "README.md":
		return EntryReadme
	}
	return EntryOther
}

// walk collects the file paths under dir, bounded by maxDepth and filtered
// by the ignore patterns. Returned paths are sorted.
func (s *Scanner) walk(ctx context.Context, fsys fs.FS, dir string, l *Layout) []string {
	matches, err := doublestar.Glob(fsys, dir+"/**")
	if err != nil {
		l.Warnings = append(l.Warnings, errors.Wrapf(err, "failed to walk %s/", dir).Error())
		return nil
	}

	var files []string
	depthWarned := false
	for _, match := range matches {
		if strings.Count(match, "/") > s.maxDepth {
			if !depthWarned {
				l.Warnings = append(l.Warnings, errors.Errorf("%s/ nests deeper than %d levels, deeper entries skipped", dir, s.maxDepth).Error())
				depthWarned = true
			}
			continue
		}
		info, err := fs.Stat(fsys, match)
		if err != nil || info.IsDir() {
			continue
		}
		if s.ignored(match) {
			logger.G(ctx).WithField("path", match).Debug("entry excluded by ignore pattern")
			continue
		}
		files = append(files, match)
	}

	sort.Strings(files)
	return files
}

func (s *Scanner) ignored(path string) bool {
	for _, g := range s.ignore {
		if g.Match(path) {
			return true
		}
	}
	return false
}

var envExampleRe = regexp.MustCompile(`^\s*(?:export\s+)?([A-Z][A-Z0-9_]*)=`)

// readEnvExample extracts the declared variable names from .env.example.
// Unreadable files are treated as empty; the file's presence is what the
// rules care about.
func readEnvExample(ctx context.Context, root string) []string {
	f, err := os.Open(root + "/.env.example")
	if err != nil {
		logger.G(ctx).WithError(err).Debug("failed to open .env.example")
		return nil
	}
	defer f.Close()

	var vars []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if m := envExampleRe.FindStringSubmatch(line); m != nil && !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}
