// Package walker discovers candidate source files under a project
// root, honoring gitignore-style ignore rules, include/exclude glob
// patterns, and a test-path policy, in deterministic lexical order.
package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
)

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true, ".o": true,
	".wasm": true, ".class": true, ".jar": true, ".bin": true, ".dat": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".mov": true, ".avi": true, ".webm": true,
	".sqlite": true, ".db": true,
}

var testPathHints = []string{"/tests/", "/test/", "/__tests__/", "/spec/"}
var testFileSuffixes = []string{"_test.", ".test.", ".spec."}

// Options controls one walk.
type Options struct {
	Root             string
	Include          []string // doublestar glob patterns, relative to Root
	Exclude          []string // doublestar glob patterns, relative to Root
	RespectGitignore bool
	ExcludeTests     bool
	FollowSymlinks   bool
	MaxFileSize      int64
}

// Candidate is one file the walker decided to emit.
type Candidate struct {
	Path         string // absolute
	RelPath      string // slash-separated, relative to Root
	Size         int64
	IsTestPath   bool
}

// Walk returns candidate file paths under opts.Root in deterministic
// (lexically sorted) order. Non-text content is skipped by extension
// and a magic-byte sniff; symlinks are followed once, with a
// (device, inode) visited set guarding against cycles.
func Walk(opts Options) ([]Candidate, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	gi := NewGitignoreMatcher()
	if opts.RespectGitignore {
		if err := gi.Load(filepath.Join(root, ".gitignore")); err != nil {
			return nil, err
		}
	}

	visited := map[inodeKey]bool{}
	var out []Candidate

	var walkDir func(dir string) error
	walkDir = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, _ := filepath.Rel(root, full)
			rel = filepath.ToSlash(rel)

			info, err := entry.Info()
			if err != nil {
				continue
			}
			isDir := entry.IsDir()

			if info.Mode()&os.ModeSymlink != 0 {
				if !opts.FollowSymlinks {
					continue
				}
				target, err := filepath.EvalSymlinks(full)
				if err != nil {
					continue
				}
				key, ok := statInode(target)
				if ok {
					if visited[key] {
						continue
					}
					visited[key] = true
				}
				targetInfo, err := os.Stat(target)
				if err != nil {
					continue
				}
				isDir = targetInfo.IsDir()
				info = targetInfo
				full = target
			}

			if opts.RespectGitignore && gi.ShouldIgnore(rel, isDir) {
				continue
			}
			if isDir {
				if shouldSkipDirName(entry.Name()) {
					continue
				}
				if err := walkDir(full); err != nil {
					return err
				}
				continue
			}

			if !matchesIncludeExclude(rel, opts.Include, opts.Exclude) {
				continue
			}
			if isBinary(full, info.Size()) {
				continue
			}
			if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
				continue
			}

			isTest := isTestPath(rel)
			if opts.ExcludeTests && isTest {
				continue
			}

			out = append(out, Candidate{
				Path:       full,
				RelPath:    rel,
				Size:       info.Size(),
				IsTestPath: isTest,
			})
		}
		return nil
	}

	if err := walkDir(root); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func shouldSkipDirName(name string) bool {
	switch name {
	case ".git", "node_modules", ".codegraph":
		return true
	}
	return false
}

func matchesIncludeExclude(rel string, include, exclude []string) bool {
	for _, pat := range exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func isTestPath(rel string) bool {
	lower := "/" + strings.ToLower(rel)
	for _, hint := range testPathHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	base := strings.ToLower(filepath.Base(rel))
	for _, suffix := range testFileSuffixes {
		if strings.Contains(base, suffix) {
			return true
		}
	}
	return false
}

// isBinary combines an extension denylist with a magic-byte sniff of
// the first 512 bytes: a NUL byte marks the file as non-text. Invalid
// UTF-8 without a NUL byte does not.
func isBinary(path string, size int64) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	if size == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	buf = buf[:n]
	if n == 0 {
		return false
	}
	for _, b := range buf {
		if b == 0 {
			return true
		}
	}
	return false
}

type inodeKey struct {
	dev, ino uint64
}

func statInode(path string) (inodeKey, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return inodeKey{}, false
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return inodeKey{}, false
	}
	return inodeKey{dev: uint64(sys.Dev), ino: sys.Ino}, true
}
