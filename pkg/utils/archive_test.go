package utils

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

type tarEntry struct {
	name string
	body string
	mode int64
	link string
}

func writeTarGz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	buf := new(bytes.Buffer)
	gz := gzip.NewWriter(buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.link != "" {
			hdr = &tar.Header{Name: e.name, Linkname: e.link, Typeflag: tar.TypeSymlink, Mode: 0o777}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.link == "" {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.zip")
	writeZip(t, src, map[string]string{
		"jdk/bin/java.exe": "MZ",
		"jdk/release":      "JAVA_VERSION=\"17\"",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, ExtractZip(src, dest))

	data, err := os.ReadFile(filepath.Join(dest, "jdk", "release"))
	require.NoError(t, err)
	assert.Equal(t, "JAVA_VERSION=\"17\"", string(data))
	assert.FileExists(t, filepath.Join(dest, "jdk", "bin", "java.exe"))
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	writeZip(t, src, map[string]string{"../../escape.txt": "x"})

	err := ExtractZip(src, filepath.Join(dir, "out"))
	require.ErrorIs(t, err, ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestExtractTarGzKeepsModes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "jdk.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "jdk-17/bin/java", body: "#!/bin/sh\n", mode: 0o755},
		{name: "jdk-17/legal/java.base/LICENSE", body: "gpl", mode: 0o644},
		{name: "jdk-17/legal/java.compiler/LICENSE", link: "../java.base/LICENSE"},
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, ExtractTarGz(src, dest))

	info, err := os.Stat(filepath.Join(dest, "jdk-17", "bin", "java"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "java should stay executable")

	data, err := os.ReadFile(filepath.Join(dest, "jdk-17", "legal", "java.compiler", "LICENSE"))
	require.NoError(t, err)
	assert.Equal(t, "gpl", string(data))
}

func TestExtractTarGzRejectsEscapingSymlink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, src, []tarEntry{{name: "jdk/link", link: "../../../etc/passwd"}})

	err := ExtractTarGz(src, filepath.Join(dir, "out"))
	require.ErrorIs(t, err, ErrUnsafePath)
}

func TestExtractNativesSkipsExcluded(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "lwjgl-natives-linux.jar")
	writeZip(t, src, map[string]string{
		"liblwjgl.so":          "elf",
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0",
	})

	dest := filepath.Join(dir, "natives")
	n, err := ExtractNatives(src, dest, []string{"META-INF/"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dest, "liblwjgl.so"))
	assert.NoDirExists(t, filepath.Join(dest, "META-INF"))
}

func TestZipDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "saves", "world"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "saves", "world", "level.dat"), []byte("lvl"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mods", "sodium.jar"), []byte("jar"), 0o644))

	buf := new(bytes.Buffer)
	archived, err := ZipDirs(buf, root, []string{"saves", "resourcepacks", "mods"})
	require.NoError(t, err)
	assert.Equal(t, []string{"saves", "mods"}, archived)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := []string{}
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "saves/world/level.dat")
	assert.Contains(t, names, "mods/sodium.jar")
}
