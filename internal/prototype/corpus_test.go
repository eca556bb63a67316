package prototype

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func corpusErrorCode(t *testing.T, err error) string {
	t.Helper()
	var corpusErr *CorpusError
	require.True(t, errors.As(err, &corpusErr), "expected CorpusError, got %v", err)
	return corpusErr.Code
}

func TestDirCorpusListsLabelsAndClips(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "scottish", "b.wav"))
	touch(t, filepath.Join(root, "scottish", "a.MP3"))
	touch(t, filepath.Join(root, "scottish", "notes.txt"))
	touch(t, filepath.Join(root, "scottish", ".hidden.wav"))
	touch(t, filepath.Join(root, "irish", "clip.webm"))
	touch(t, filepath.Join(root, ".cache", "clip.wav"))
	touch(t, filepath.Join(root, "loose.wav"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "yorkshire"), 0o755))

	corpus, err := NewDirCorpus(root)
	require.NoError(t, err)

	labels, err := corpus.Labels()
	require.NoError(t, err)
	assert.Equal(t, []string{"irish", "scottish", "yorkshire"}, labels)

	clips, err := corpus.Clips("scottish")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "scottish", "a.MP3"),
		filepath.Join(root, "scottish", "b.wav"),
	}, clips)

	clips, err = corpus.Clips("yorkshire")
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestDirCorpusCustomExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "irish", "a.wav"))
	touch(t, filepath.Join(root, "irish", "b.aiff"))

	corpus, err := NewDirCorpus(root, "aiff")
	require.NoError(t, err)

	clips, err := corpus.Clips("irish")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "irish", "b.aiff")}, clips)
}

func TestDirCorpusErrors(t *testing.T) {
	root := t.TempDir()

	_, err := NewDirCorpus(filepath.Join(root, "missing"))
	assert.True(t, IsCorpusError(err))
	assert.Equal(t, ErrCodeCorpusMissing, corpusErrorCode(t, err))

	file := filepath.Join(root, "file.wav")
	touch(t, file)
	_, err = NewDirCorpus(file)
	assert.Equal(t, ErrCodeCorpusInvalid, corpusErrorCode(t, err))

	empty := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	touch(t, filepath.Join(empty, "loose.wav"))
	corpus, err := NewDirCorpus(empty)
	require.NoError(t, err)
	_, err = corpus.Labels()
	assert.Equal(t, ErrCodeNoLabels, corpusErrorCode(t, err))
}

func mkdir(path string) error {
	return os.MkdirAll(path, 0o755)
}
