package main

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedPaths(names ...string) []ImagePath {
	paths := make([]ImagePath, len(names))
	for i, name := range names {
		paths[i] = fileImagePath(name)
	}
	return paths
}

func TestImageSetStep(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		initialIdx  int
		dir         Direction
		magnitude   int
		expectedIdx int
		moved       bool
	}{
		{"Forward one", 5, 3, Forward, 1, 4, true},
		{"Forward at last index", 5, 4, Forward, 1, 4, false},
		{"Forward overshoot rejected", 5, 2, Forward, 10, 2, false},
		{"Forward ten", 30, 5, Forward, 10, 15, true},
		{"Forward to exact last", 11, 0, Forward, 10, 10, true},
		{"Forward hundred past end", 50, 0, Forward, 100, 0, false},
		{"Forward on singleton", 1, 0, Forward, 1, 0, false},
		{"Backward one", 5, 2, Backward, 1, 1, true},
		{"Backward at zero", 5, 0, Backward, 1, 0, false},
		{"Backward larger than index", 5, 3, Backward, 10, 3, false},
		{"Backward exact to zero", 20, 10, Backward, 10, 0, true},
		{"Backward hundred", 300, 250, Backward, 100, 150, true},
		{"Zero magnitude", 5, 2, Forward, 0, 2, false},
		{"Negative magnitude", 5, 2, Backward, -1, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, tt.count)
			for i := range names {
				names[i] = filepath.Join("img", string(rune('a'+i%26))+".png")
			}
			set := NewImageSet(namedPaths(names...))
			set.index = tt.initialIdx

			assert.Equal(t, tt.moved, set.Step(tt.dir, tt.magnitude))
			assert.Equal(t, tt.expectedIdx, set.Index())
		})
	}
}

func TestImageSetEmpty(t *testing.T) {
	set := NewImageSet(nil)

	assert.True(t, set.Empty())
	assert.False(t, set.Step(Forward, 1))
	assert.False(t, set.Step(Backward, 1))
	_, ok := set.Current()
	assert.False(t, ok)

	result, err := set.Keep(NewKeepDir(filepath.Join(t.TempDir(), "keep")))
	require.NoError(t, err)
	assert.False(t, result.Kept)
}

func TestImageSetDoesNotAliasInput(t *testing.T) {
	paths := namedPaths("a.png", "b.png")
	set := NewImageSet(paths)
	paths[0] = fileImagePath("changed.png")

	current, ok := set.Current()
	require.True(t, ok)
	assert.Equal(t, "a.png", current.Path)
}

// keepFixture creates files under src/ in a fresh working directory.
func keepFixture(t *testing.T, names ...string) []ImagePath {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir("src", 0o755))

	paths := make([]ImagePath, len(names))
	for i, name := range names {
		p := filepath.Join("src", name)
		require.NoError(t, os.WriteFile(p, []byte("data-"+name), 0o644))
		paths[i] = fileImagePath(p)
	}
	return paths
}

func TestImageSetKeepLast(t *testing.T) {
	paths := keepFixture(t, "a.png", "b.png", "c.png")
	set := NewImageSet(paths)
	set.index = 2

	result, err := set.Keep(NewKeepDir("keep"))
	require.NoError(t, err)

	assert.True(t, result.Kept)
	assert.Equal(t, paths[2], result.Path)
	assert.Equal(t, filepath.Join("keep", "c.png"), result.Destination)
	assert.Equal(t, paths[:2], set.Paths())
	assert.Equal(t, 1, set.Index())

	data, err := os.ReadFile(filepath.Join("keep", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, "data-c.png", string(data))
	assert.NoFileExists(t, paths[2].Path)
}

func TestImageSetKeepMiddleKeepsIndex(t *testing.T) {
	paths := keepFixture(t, "a.png", "b.png", "c.png")
	set := NewImageSet(paths)
	set.index = 1

	_, err := set.Keep(NewKeepDir("keep"))
	require.NoError(t, err)

	assert.Equal(t, []ImagePath{paths[0], paths[2]}, set.Paths())
	assert.Equal(t, 1, set.Index())
	current, _ := set.Current()
	assert.Equal(t, paths[2], current)
}

func TestImageSetKeepSingleton(t *testing.T) {
	paths := keepFixture(t, "a.png")
	set := NewImageSet(paths)

	_, err := set.Keep(NewKeepDir("keep"))
	require.NoError(t, err)

	assert.True(t, set.Empty())
	assert.False(t, set.Step(Forward, 1))
	assert.False(t, set.Step(Backward, 1))
	assert.FileExists(t, filepath.Join("keep", "a.png"))
}

func TestImageSetKeepReusesDirectory(t *testing.T) {
	paths := keepFixture(t, "a.png", "b.png")
	set := NewImageSet(paths)
	keep := NewKeepDir("keep")

	_, err := set.Keep(keep)
	require.NoError(t, err)
	_, err = set.Keep(keep)
	require.NoError(t, err)

	assert.True(t, set.Empty())
	assert.FileExists(t, filepath.Join("keep", "a.png"))
	assert.FileExists(t, filepath.Join("keep", "b.png"))
}

func TestImageSetKeepFailureLeavesState(t *testing.T) {
	t.Run("Collision", func(t *testing.T) {
		paths := keepFixture(t, "a.png", "b.png")
		require.NoError(t, os.Mkdir("keep", 0o755))
		require.NoError(t, os.WriteFile(filepath.Join("keep", "a.png"), []byte("old"), 0o644))
		set := NewImageSet(paths)

		_, err := set.Keep(NewKeepDir("keep"))
		require.ErrorIs(t, err, errKeep)
		require.ErrorIs(t, err, errCollision)

		assert.Equal(t, paths, set.Paths())
		assert.Equal(t, 0, set.Index())
		assert.FileExists(t, paths[0].Path)
		data, err := os.ReadFile(filepath.Join("keep", "a.png"))
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))
	})

	t.Run("Missing source", func(t *testing.T) {
		paths := keepFixture(t, "a.png", "b.png")
		require.NoError(t, os.Remove(paths[1].Path))
		set := NewImageSet(paths)
		set.index = 1

		_, err := set.Keep(NewKeepDir("keep"))
		require.ErrorIs(t, err, errKeep)
		assert.Equal(t, paths, set.Paths())
		assert.Equal(t, 1, set.Index())
	})

	t.Run("Keep path is a file", func(t *testing.T) {
		paths := keepFixture(t, "a.png")
		require.NoError(t, os.WriteFile("keep", nil, 0o644))
		set := NewImageSet(paths)

		_, err := set.Keep(NewKeepDir("keep"))
		require.ErrorIs(t, err, errNotDirectory)
		assert.Equal(t, paths, set.Paths())
		assert.FileExists(t, paths[0].Path)
	})
}

func TestImageSetKeepArchiveEntry(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeZip(t, "book.zip", map[string][]byte{"pages/01.png": []byte("page-one")})

	set := NewImageSet([]ImagePath{entryImagePath("book.zip", "pages/01.png")})
	result, err := set.Keep(NewKeepDir("keep"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("keep", "01.png"), result.Destination)
	data, err := os.ReadFile(result.Destination)
	require.NoError(t, err)
	assert.Equal(t, "page-one", string(data))
	assert.FileExists(t, "book.zip")
	assert.True(t, set.Empty())
}

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}
