package archive

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/project"
	"github.com/fyrsmithlabs/proj/internal/registry"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	}
}

// steppingClock hands out strictly increasing times so consecutive
// archives of the same project get distinct filenames.
func steppingClock() func() time.Time {
	at := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *registry.Registry, string) {
	t.Helper()

	home := t.TempDir()
	reg := registry.New(filepath.Join(home, "projects"), nil)
	require.NoError(t, reg.Ensure())

	svc := New(
		filepath.Join(home, ".proj", "archives"),
		filepath.Join(home, ".proj", "projects"),
		reg, nil, opts...,
	)
	return svc, reg, home
}

// writeProject lays down a small project tree with nested directories.
func writeProject(t *testing.T, parent, name string) string {
	t.Helper()

	dir := filepath.Join(parent, name)
	require.NoError(t, manifest.New(name).Save(dir))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# "+name+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "deep", "data.txt"), []byte("data"), 0o644))
	return dir
}

// treeSnapshot maps slash-relative file paths to contents.
func treeSnapshot(t *testing.T, root string) map[string]string {
	t.Helper()

	snap := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		require.NoError(t, walkErr)
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		snap[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return snap
}

func TestService_Archive_RoundTrip(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(fixedClock()))

	src := writeProject(t, reg.Dir(), "webapp")
	want := treeSnapshot(t, src)

	path, err := svc.Archive("webapp", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Dir(), "webapp_20240309_143005.zip"), path)
	assert.FileExists(t, path)
	assert.NoDirExists(t, src, "live tree must be deleted after finalize")

	res, err := svc.Restore("webapp", "")
	require.NoError(t, err)
	assert.Equal(t, "webapp_20240309_143005", res.Archive)
	assert.Equal(t, filepath.Join(reg.Dir(), "webapp"), res.Path)
	assert.False(t, res.Linked, "restore into the registry needs no symlink")
	assert.Equal(t, want, treeSnapshot(t, res.Path))
}

func TestService_Archive_RemovesRegistryEntry(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(fixedClock()))

	work := t.TempDir()
	src := writeProject(t, work, "api")
	reg.Link(src)

	path, err := svc.Archive("api", "")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NoDirExists(t, src)

	_, err = os.Lstat(filepath.Join(reg.Dir(), "api"))
	assert.True(t, os.IsNotExist(err), "registry symlink should be gone")
}

func TestService_Archive_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Archive("ghost", t.TempDir())
	assert.ErrorIs(t, err, project.ErrNotFound)
}

func TestService_Archive_ResolutionOrder(t *testing.T) {
	// The retired flat projects dir is consulted before the work root.
	svc, _, home := newTestService(t, WithClock(steppingClock()))

	legacy := writeProject(t, filepath.Join(home, ".proj", "projects"), "tool")
	require.NoError(t, os.WriteFile(filepath.Join(legacy, "origin.txt"), []byte("legacy"), 0o644))

	work := t.TempDir()
	inWork := writeProject(t, work, "tool")
	require.NoError(t, os.WriteFile(filepath.Join(inWork, "origin.txt"), []byte("work"), 0o644))

	_, err := svc.Archive("tool", work)
	require.NoError(t, err)
	assert.DirExists(t, inWork, "the work-root copy must stay untouched")

	res, err := svc.Restore("tool", "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(res.Path, "origin.txt"))
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(data))
}

func TestService_Archive_ProgressOutput(t *testing.T) {
	var buf bytes.Buffer
	svc, reg, _ := newTestService(t, WithClock(fixedClock()), WithProgressOutput(&buf))

	writeProject(t, reg.Dir(), "webapp")

	_, err := svc.Archive("webapp", "")
	require.NoError(t, err)
	assert.NotZero(t, buf.Len(), "progress bar should render when an output is set")
}

func TestService_List(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(steppingClock()))

	stems, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, stems, "missing archives dir reads as empty")

	writeProject(t, reg.Dir(), "beta")
	writeProject(t, reg.Dir(), "alpha")
	_, err = svc.Archive("beta", "")
	require.NoError(t, err)
	_, err = svc.Archive("alpha", "")
	require.NoError(t, err)

	stems, err = svc.List()
	require.NoError(t, err)
	require.Len(t, stems, 2)
	assert.Equal(t, "alpha", stems[0][:5], "stems come back in lexical order")
	assert.Equal(t, "beta", stems[1][:4])
}

func TestService_Remove(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(steppingClock()))

	writeProject(t, reg.Dir(), "app")
	first, err := svc.Archive("app", "")
	require.NoError(t, err)
	writeProject(t, reg.Dir(), "app")
	second, err := svc.Archive("app", "")
	require.NoError(t, err)

	firstStem := stem(first)
	secondStem := stem(second)

	removed, err := svc.Remove(firstStem)
	require.NoError(t, err)
	assert.Equal(t, []string{firstStem}, removed)
	assert.NoFileExists(t, first)
	assert.FileExists(t, second)

	removed, err = svc.Remove("app")
	require.NoError(t, err)
	assert.Equal(t, []string{secondStem}, removed, "project name matches its remaining archives")
	assert.NoFileExists(t, second)

	_, err = svc.Remove("app")
	assert.ErrorIs(t, err, project.ErrNotFound)
}

func TestService_Restore_PicksLatest(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(steppingClock()))

	dir := writeProject(t, reg.Dir(), "svc")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MARKER"), []byte("v1"), 0o644))
	_, err := svc.Archive("svc", "")
	require.NoError(t, err)

	dir = writeProject(t, reg.Dir(), "svc")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MARKER"), []byte("v2"), 0o644))
	second, err := svc.Archive("svc", "")
	require.NoError(t, err)

	res, err := svc.Restore("svc", "")
	require.NoError(t, err)
	assert.Equal(t, stem(second), res.Archive)

	data, err := os.ReadFile(filepath.Join(res.Path, "MARKER"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestService_Restore_Conflict(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(fixedClock()))

	writeProject(t, reg.Dir(), "web")
	_, err := svc.Archive("web", "")
	require.NoError(t, err)

	dest := filepath.Join(reg.Dir(), "web")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	sentinel := filepath.Join(dest, "keep.txt")
	require.NoError(t, os.WriteFile(sentinel, []byte("mine"), 0o644))

	_, err = svc.Restore("web", "")
	assert.ErrorIs(t, err, project.ErrConflict)

	data, err := os.ReadFile(sentinel)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data), "a conflicting restore must not write anything")
}

func TestService_Restore_MetadataRecoversUnderscoreName(t *testing.T) {
	// Filename parsing alone would truncate "my_app" to "my"; the
	// metadata entry preserves it.
	svc, reg, _ := newTestService(t, WithClock(fixedClock()))

	work := t.TempDir()
	src := writeProject(t, work, "my_app")
	reg.Link(src)

	path, err := svc.Archive("my_app", "")
	require.NoError(t, err)

	res, err := svc.Restore(stem(path), "")
	require.NoError(t, err)
	assert.Equal(t, "my_app", filepath.Base(res.Path))
}

func TestService_Restore_OutsideRegistryLinks(t *testing.T) {
	svc, reg, _ := newTestService(t, WithClock(fixedClock()))

	writeProject(t, reg.Dir(), "cli")
	_, err := svc.Archive("cli", "")
	require.NoError(t, err)

	destDir := t.TempDir()
	res, err := svc.Restore("cli", destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "cli"), res.Path)
	assert.True(t, res.Linked)

	target, err := os.Readlink(filepath.Join(reg.Dir(), "cli"))
	require.NoError(t, err)
	assert.Equal(t, res.Path, target)
}

func TestService_Restore_SanitizesTraversal(t *testing.T) {
	svc, reg, _ := newTestService(t)

	require.NoError(t, os.MkdirAll(svc.Dir(), 0o755))
	writeHostileArchive(t, filepath.Join(svc.Dir(), "evil_20240101_000000.zip"))

	res, err := svc.Restore("evil_20240101_000000", "")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(res.Path, "escape.txt"))
	assert.FileExists(t, filepath.Join(res.Path, "nested", "also.txt"))
	assert.FileExists(t, filepath.Join(res.Path, "abs.txt"))
	assert.FileExists(t, filepath.Join(res.Path, "ok", "file.txt"))
	assert.DirExists(t, filepath.Join(res.Path, "sub"))
	assert.NoFileExists(t, filepath.Join(res.Path, MetadataName), "the metadata entry is not materialized")

	assert.NoFileExists(t, filepath.Join(reg.Dir(), "escape.txt"), "nothing may land outside the destination")
	assert.NoFileExists(t, filepath.Join(reg.Dir(), "also.txt"))
}

func writeHostileArchive(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	for _, e := range []struct{ name, content string }{
		{"../escape.txt", "out"},
		{"nested/../../also.txt", "out"},
		{"/abs.txt", "out"},
		{"ok/file.txt", "in"},
		{MetadataName, `{"id":"x","name":"evil"}`},
	} {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	_, err = zw.Create("sub/")
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(Ext)]
}
