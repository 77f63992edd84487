package photo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegStub = []byte{0xff, 0xd8, 0xff, 0xd9}

func TestSaver_Save(t *testing.T) {
	saver, err := NewSaver(t.TempDir())
	require.NoError(t, err)

	path, err := saver.Save("session-1", 3, "standing", jpegStub)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(saver.Dir(), "session-1"), filepath.Dir(path))
	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "rep003_standing_"), "unexpected name %q", name)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, jpegStub, data)
}

func TestSaver_UniqueNamesPerRep(t *testing.T) {
	saver, err := NewSaver(t.TempDir())
	require.NoError(t, err)

	first, err := saver.Save("session-1", 1, "sitting", jpegStub)
	require.NoError(t, err)
	second, err := saver.Save("session-1", 1, "sitting", jpegStub)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSaver_SessionsAreSeparated(t *testing.T) {
	saver, err := NewSaver(t.TempDir())
	require.NoError(t, err)

	_, err = saver.Save("session-a", 1, "sitting", jpegStub)
	require.NoError(t, err)
	_, err = saver.Save("session-b", 1, "sitting", jpegStub)
	require.NoError(t, err)

	for _, session := range []string{"session-a", "session-b"} {
		entries, err := os.ReadDir(filepath.Join(saver.Dir(), session))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}

func TestSaver_RejectsEmptyFrame(t *testing.T) {
	saver, err := NewSaver(t.TempDir())
	require.NoError(t, err)

	_, err = saver.Save("session-1", 1, "sitting", nil)
	assert.Error(t, err)
}

func TestNewSaver_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	_, err := NewSaver(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
