package prototype

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultClipExtensions are the file types picked up as training clips
var DefaultClipExtensions = []string{".wav", ".mp3", ".m4a", ".ogg", ".webm", ".flac"}

// Corpus supplies labeled training clips. Labels and clips are returned in a
// stable order.
type Corpus interface {
	Root() string
	Labels() ([]string, error)
	Clips(label string) ([]string, error)
}

// DirCorpus reads a corpus laid out as one subdirectory per label holding
// that label's audio files. Hidden entries, loose files at the root and
// files with other extensions are ignored.
type DirCorpus struct {
	root       string
	extensions []string
}

// NewDirCorpus opens the corpus rooted at root
func NewDirCorpus(root string, extensions ...string) (*DirCorpus, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewCorpusError(root, ErrCodeCorpusMissing, "corpus directory does not exist", err)
		}
		return nil, NewCorpusError(root, ErrCodeCorpusInvalid, "cannot access corpus directory", err)
	}
	if !info.IsDir() {
		return nil, NewCorpusError(root, ErrCodeCorpusInvalid, "corpus root is not a directory", nil)
	}

	if len(extensions) == 0 {
		extensions = DefaultClipExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	return &DirCorpus{root: root, extensions: normalized}, nil
}

func (c *DirCorpus) Root() string {
	return c.root
}

// Labels returns the label subdirectory names in lexical order
func (c *DirCorpus) Labels() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, NewCorpusError(c.root, ErrCodeCorpusInvalid, "failed to list corpus", err)
	}

	var labels []string
	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		labels = append(labels, entry.Name())
	}
	if len(labels) == 0 {
		return nil, NewCorpusError(c.root, ErrCodeNoLabels, "corpus has no label directories", nil)
	}

	slices.Sort(labels)
	return labels, nil
}

// Clips returns the paths of label's audio files in lexical order
func (c *DirCorpus) Clips(label string) ([]string, error) {
	dir := filepath.Join(c.root, label)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips for %q: %w", label, err)
	}

	var clips []string
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		if !slices.Contains(c.extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		clips = append(clips, filepath.Join(dir, entry.Name()))
	}

	slices.Sort(clips)
	return clips, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
