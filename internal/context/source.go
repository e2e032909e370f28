package context

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SourceReader loads a byte range of one file's contents, used to pull
// full source text for Core candidates.
type SourceReader interface {
	ReadRange(path string, startByte, endByte int) (string, error)
}

// FileSourceReader reads from disk under Root, caching whole-file
// contents so a file with several Core candidates is only read once.
type FileSourceReader struct {
	Root string

	mu    sync.Mutex
	cache map[string][]byte
}

// NewFileSourceReader returns a reader rooted at root.
func NewFileSourceReader(root string) *FileSourceReader {
	return &FileSourceReader{Root: root, cache: map[string][]byte{}}
}

// ReadRange returns the text between startByte and endByte (exclusive)
// of the file at path, which may be absolute or relative to Root.
func (r *FileSourceReader) ReadRange(path string, startByte, endByte int) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(r.Root, path)
	}

	r.mu.Lock()
	data, ok := r.cache[full]
	r.mu.Unlock()
	if !ok {
		var err error
		data, err = os.ReadFile(full)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.cache[full] = data
		r.mu.Unlock()
	}

	if startByte < 0 || endByte > len(data) || startByte > endByte {
		return "", fmt.Errorf("context: byte range [%d,%d) out of bounds for %s (len %d)", startByte, endByte, full, len(data))
	}
	return string(data[startByte:endByte]), nil
}
