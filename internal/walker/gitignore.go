package walker

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignorePattern is one line from a .gitignore file, normalized into
// the shape doublestar's glob matcher expects.
type GitignorePattern struct {
	Glob      string
	Negate    bool
	Directory bool // pattern ends in "/": only matches directories
	Anchored  bool // pattern contains a "/" before the end: matches relative to root only
}

// GitignoreMatcher holds the patterns loaded from one or more
// .gitignore files and answers ShouldIgnore queries against them.
type GitignoreMatcher struct {
	patterns []GitignorePattern
}

// NewGitignoreMatcher returns an empty matcher.
func NewGitignoreMatcher() *GitignoreMatcher {
	return &GitignoreMatcher{}
}

// Load reads a .gitignore file and appends its patterns. A missing
// file is not an error.
func (m *GitignoreMatcher) Load(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m.AddLine(scanner.Text())
	}
	return scanner.Err()
}

// AddLine parses one gitignore line and, if it is a pattern (not a
// blank line or comment), appends it.
func (m *GitignoreMatcher) AddLine(line string) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	p := GitignorePattern{Glob: line}
	if strings.HasPrefix(p.Glob, "!") {
		p.Negate = true
		p.Glob = p.Glob[1:]
	}
	if strings.HasSuffix(p.Glob, "/") {
		p.Directory = true
		p.Glob = strings.TrimSuffix(p.Glob, "/")
	}
	if strings.Contains(strings.TrimPrefix(p.Glob, "/"), "/") {
		p.Anchored = true
	}
	p.Glob = strings.TrimPrefix(p.Glob, "/")
	if !strings.Contains(p.Glob, "*") && !p.Anchored {
		// Bare names like "node_modules" match at any depth.
		p.Glob = "**/" + p.Glob
	}
	m.patterns = append(m.patterns, p)
}

// ShouldIgnore reports whether relPath (slash-separated, relative to
// the walk root) is ignored. Later patterns override earlier ones, so
// a later "!pattern" can re-include something an earlier pattern
// excluded — the same precedence .gitignore itself uses.
func (m *GitignoreMatcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, p := range m.patterns {
		if p.Directory && !isDir {
			continue
		}
		glob := p.Glob
		if !strings.Contains(glob, "/") {
			glob = "**/" + glob
		}
		matched, _ := doublestar.Match(glob, relPath)
		if !matched {
			matched, _ = doublestar.Match(glob+"/**", relPath)
		}
		if matched {
			ignored = !p.Negate
		}
	}
	return ignored
}
