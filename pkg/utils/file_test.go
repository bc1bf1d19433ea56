package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDownloadURLFromMavenPath(t *testing.T) {
	url, rel, err := BuildDownloadURLFromMavenPath("https://maven.fabricmc.net", "org.ow2.asm:asm:9.8")
	require.NoError(t, err)
	assert.Equal(t, "https://maven.fabricmc.net/org/ow2/asm/asm/9.8/asm-9.8.jar", url)
	assert.Equal(t, "org/ow2/asm/asm/9.8/asm-9.8.jar", rel)

	_, rel, err = BuildDownloadURLFromMavenPath("https://maven.neoforged.net/releases/", "net.neoforged:neoforge:20.4.80:universal@zip")
	require.NoError(t, err)
	assert.Equal(t, "net/neoforged/neoforge/20.4.80/neoforge-20.4.80-universal.zip", rel)

	_, _, err = BuildDownloadURLFromMavenPath("https://x", "broken")
	assert.Error(t, err)
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLockFileIsReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	unlock, err := LockFile(path)
	require.NoError(t, err)
	require.NoError(t, unlock())

	unlock, err = LockFile(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", FileSHA1(path))
	assert.Equal(t, BytesSHA256([]byte("abc")), FileSHA256(path))
	assert.Equal(t, "", FileSHA1(filepath.Join(t.TempDir(), "missing")))
}
