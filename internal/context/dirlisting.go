package context

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/walker"
)

// DirectoryLister produces the Background tier's compact project
// listing, capped to maxLines.
type DirectoryLister interface {
	List(maxLines int) (string, error)
}

// WalkerDirectoryLister renders a directory listing from the same
// candidate set the indexer walks, grouped by directory and sorted
// lexically for determinism.
type WalkerDirectoryLister struct {
	Root    string
	Include []string
	Exclude []string
}

// List returns one line per directory (with a file count) followed by
// up to a handful of its entries, stopping once maxLines lines have
// been emitted.
func (w *WalkerDirectoryLister) List(maxLines int) (string, error) {
	if maxLines <= 0 {
		return "", nil
	}
	candidates, err := walker.Walk(walker.Options{
		Root:             w.Root,
		Include:          w.Include,
		Exclude:          w.Exclude,
		RespectGitignore: true,
	})
	if err != nil {
		return "", err
	}

	byDir := map[string][]string{}
	var dirs []string
	for _, c := range candidates {
		dir := "."
		if idx := strings.LastIndex(c.RelPath, "/"); idx >= 0 {
			dir = c.RelPath[:idx]
		}
		if _, ok := byDir[dir]; !ok {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], c.RelPath)
	}
	sort.Strings(dirs)

	var sb strings.Builder
	lines := 0
	const filesPerDir = 3
	for _, dir := range dirs {
		if lines >= maxLines {
			break
		}
		files := byDir[dir]
		sort.Strings(files)
		fmt.Fprintf(&sb, "%s/ (%d files)\n", dir, len(files))
		lines++
		shown := files
		if len(shown) > filesPerDir {
			shown = shown[:filesPerDir]
		}
		for _, f := range shown {
			if lines >= maxLines {
				break
			}
			fmt.Fprintf(&sb, "  %s\n", f)
			lines++
		}
		if lines < maxLines && len(files) > filesPerDir {
			fmt.Fprintf(&sb, "  ... (%d more)\n", len(files)-filesPerDir)
			lines++
		}
	}
	return sb.String(), nil
}
