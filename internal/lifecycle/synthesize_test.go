package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/proj/internal/manifest"
)

func TestSynthesizeManifest_Defaults(t *testing.T) {
	svc, _, home, _ := newTestService(t, &recordingRunner{}, &scriptedPrompt{})

	root := filepath.Join(home, "bare")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, svc.synthesizeManifest(root, ""))

	m, err := manifest.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "bare", m.Name())
	assert.Equal(t, "0.0.1", m.Version())
	assert.Equal(t, "", m.Description())
	assert.Equal(t, "active", m.Status())
	assert.Equal(t, 1.0, m.Completion())

	// The template key is present but null.
	tpl, ok := m.Get(manifest.KeyTemplate)
	require.True(t, ok)
	assert.Nil(t, tpl)
}

func TestSynthesizeManifest_RecordsTemplateURL(t *testing.T) {
	svc, _, home, _ := newTestService(t, &recordingRunner{}, &scriptedPrompt{})

	root := filepath.Join(home, "cloned")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, svc.synthesizeManifest(root, "https://github.com/kit/cloned.git"))

	m, err := manifest.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/kit/cloned.git", m.Template())
}

func TestReadmeDescription(t *testing.T) {
	root := t.TempDir()
	readme := "# Widget\n\nA tool for widgets.\nThis line is dropped.\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte(readme), 0o644))

	assert.Equal(t, "# Widget  A tool for widgets.", readmeDescription(root))
}

func TestReadmeDescription_VariantOrder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("plain"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("markdown"), 0o644))

	assert.Equal(t, "markdown", readmeDescription(root))
}

func TestReadmeDescription_None(t *testing.T) {
	assert.Equal(t, "", readmeDescription(t.TempDir()))
}

func TestInfoPyVersion(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	content := "# metadata\n__author__ = 'kit'\n__version__ = \"2.1.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "info.py"), []byte(content), 0o644))

	v, ok := infoPyVersion(root)
	require.True(t, ok)
	assert.Equal(t, "2.1.0", v)
}

func TestInfoPyVersion_SingleQuotes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "info.py"), []byte("__version__='0.9'\n"), 0o644))

	v, ok := infoPyVersion(root)
	require.True(t, ok)
	assert.Equal(t, "0.9", v)
}

func TestInfoPyVersion_Missing(t *testing.T) {
	_, ok := infoPyVersion(t.TempDir())
	assert.False(t, ok)

	// An info.py without the assignment yields nothing.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "info.py"), []byte("x = 1\n"), 0o644))
	_, ok = infoPyVersion(root)
	assert.False(t, ok)
}

func TestVersionFileContents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "version"), []byte(" 3.4.1 \n"), 0o644))

	v, ok := versionFileContents(root)
	require.True(t, ok)
	assert.Equal(t, "3.4.1", v)
}

func TestDetectVersion_InfoPyBeatsVersionFile(t *testing.T) {
	svc, _, _, _ := newTestService(t, &recordingRunner{}, &scriptedPrompt{})

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "info.py"), []byte("__version__ = '2.0'\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "VERSION"), []byte("9.9\n"), 0o644))

	assert.Equal(t, "2.0", svc.detectVersion(root))
}

func TestDetectVersion_GitTagWins(t *testing.T) {
	requireGit(t)
	svc, _, _, _ := newTestService(t, &recordingRunner{}, &scriptedPrompt{})

	root := t.TempDir()
	initGitRepo(t, root)
	runGit(t, root, "tag", "v5.0.0")
	require.NoError(t, os.WriteFile(filepath.Join(root, "info.py"), []byte("__version__ = '2.0'\n"), 0o644))

	assert.Equal(t, "v5.0.0", svc.detectVersion(root))
}
