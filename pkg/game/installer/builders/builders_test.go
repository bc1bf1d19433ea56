package builders

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/utils"
)

type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls []string
}

func (f *fakeFetcher) Download(_ context.Context, url, dest, _ string) error {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	data, ok := f.files[url]
	f.mu.Unlock()
	if !ok {
		return errors.New("not found: " + url)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func TestPoolSkipsPresentFiles(t *testing.T) {
	dir := t.TempDir()
	content := []byte("hello")
	sum := utils.BytesSHA1(content)

	present := filepath.Join(dir, "a.jar")
	require.NoError(t, os.WriteFile(present, content, 0o644))

	fetcher := &fakeFetcher{files: map[string][]byte{"http://x/b.jar": content}}
	var reported int
	pool := &Pool{Fetcher: fetcher, Workers: 2, Progress: func(_ string, current, total int, _ string) {
		reported = current
		assert.Equal(t, 1, total)
	}}

	err := pool.Run(context.Background(), "libraries", []Job{
		{Name: "a", URL: "http://x/a.jar", Dest: present, Sha1: sum},
		{Name: "b", URL: "http://x/b.jar", Dest: filepath.Join(dir, "b.jar"), Sha1: sum},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://x/b.jar"}, fetcher.calls)
	assert.Equal(t, 1, reported)
	assert.FileExists(t, filepath.Join(dir, "b.jar"))
}

func TestPoolReportsFirstError(t *testing.T) {
	dir := t.TempDir()
	pool := &Pool{Fetcher: &fakeFetcher{files: map[string][]byte{}}}

	err := pool.Run(context.Background(), "assets", []Job{
		{Name: "missing", URL: "http://x/missing", Dest: filepath.Join(dir, "missing")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestPoolRejectsChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	pool := &Pool{Fetcher: &fakeFetcher{files: map[string][]byte{"http://x/a": []byte("other")}}}

	err := pool.Run(context.Background(), "assets", []Job{
		{Name: "a", URL: "http://x/a", Dest: filepath.Join(dir, "a"), Sha1: utils.BytesSHA1([]byte("expected"))},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestAssetBuilderJobsAndVirtualCopies(t *testing.T) {
	dir := t.TempDir()
	data := []byte("sound")
	hash := utils.BytesSHA1(data)

	manifest := &manifests.AssetsManifest{
		Virtual: true,
		Objects: map[string]manifests.AssetObject{"sounds/click.ogg": {Hash: hash, Size: int64(len(data))}},
	}
	builder := NewAssetBuilder(dir, "https://resources.example/", "legacy", manifest)

	jobs := builder.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://resources.example/"+hash[:2]+"/"+hash, jobs[0].URL)
	assert.Equal(t, filepath.Join(dir, "assets", "objects", hash[:2], hash), jobs[0].Dest)

	require.NoError(t, builder.WriteIndex())
	assert.FileExists(t, filepath.Join(dir, "assets", "indexes", "legacy.json"))

	require.NoError(t, os.MkdirAll(filepath.Dir(jobs[0].Dest), 0o755))
	require.NoError(t, os.WriteFile(jobs[0].Dest, data, 0o644))
	require.NoError(t, builder.Finalize())

	copied, err := os.ReadFile(filepath.Join(dir, "assets", "virtual", "legacy", "sounds", "click.ogg"))
	require.NoError(t, err)
	assert.Equal(t, data, copied)
}

func TestLibrariesBuilderJobs(t *testing.T) {
	env := rules.Env{OS: "linux", Arch: "x86_64"}
	libs := []manifests.Library{
		{
			Name: "com.mojang:brigadier:1.0.18",
			Downloads: &manifests.LibraryDownloads{Artifact: &manifests.Artifact{
				Path: "com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar",
				URL:  "https://libraries.example/com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar",
				Sha1: "abc",
			}},
		},
		{
			Name:  "ca.weblite:java-objc-bridge:1.1",
			Rules: []manifests.Rule{{Action: "allow", OS: &manifests.OSRule{Name: "osx"}}},
			Downloads: &manifests.LibraryDownloads{Artifact: &manifests.Artifact{
				Path: "ca/weblite/java-objc-bridge/1.1/java-objc-bridge-1.1.jar",
				URL:  "https://libraries.example/objc.jar",
			}},
		},
		{Name: "net.fabricmc:fabric-loader:0.16.9", URL: "https://maven.fabric.example/"},
		{Name: "net.minecraftforge:forge:1.20.1-47.2.0:client", Downloads: &manifests.LibraryDownloads{Artifact: &manifests.Artifact{Path: "net/minecraftforge/forge.jar"}}},
	}

	dir := t.TempDir()
	builder := NewLibrariesBuilder(dir, "https://libraries.example", libs, env)
	jobs := builder.Jobs()
	require.Len(t, jobs, 2)

	assert.Equal(t, "com.mojang:brigadier:1.0.18", jobs[0].Name)
	assert.Equal(t, "https://maven.fabric.example/net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar", jobs[1].URL)
	assert.Equal(t, filepath.Join(dir, "libraries", "net", "fabricmc", "fabric-loader", "0.16.9", "fabric-loader-0.16.9.jar"), jobs[1].Dest)
}

func TestNativesBuilderExtractsLegacyAndModernJars(t *testing.T) {
	env := rules.Env{OS: "linux", Arch: "x86_64"}
	dir := t.TempDir()

	libs := []manifests.Library{
		{
			Name:    "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
			Natives: map[string]string{"linux": "natives-linux"},
			Extract: &manifests.Extract{Exclude: []string{"META-INF/"}},
			Downloads: &manifests.LibraryDownloads{Classifiers: map[string]*manifests.Artifact{
				"natives-linux": {Path: "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar"},
			}},
		},
		{
			Name: "org.lwjgl:lwjgl:3.3.1:natives-linux",
			Downloads: &manifests.LibraryDownloads{Artifact: &manifests.Artifact{
				Path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar",
			}},
		},
	}
	libraries := NewLibrariesBuilder(dir, "", libs, env)

	writeJar(t, filepath.Join(dir, "libraries", "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar"),
		map[string]string{"liblwjgl.so": "a", "META-INF/MANIFEST.MF": "m"})
	writeJar(t, filepath.Join(dir, "libraries", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar"),
		map[string]string{"linux/x64/org/lwjgl/liblwjgl3.so": "b"})

	natives := NewNativesBuilder(libraries, filepath.Join(dir, "versions", "1.8.9", "natives"))
	count, err := natives.Extract()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.FileExists(t, filepath.Join(natives.Dir, "liblwjgl.so"))
	assert.NoFileExists(t, filepath.Join(natives.Dir, "META-INF", "MANIFEST.MF"))
}

func writeJar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}
