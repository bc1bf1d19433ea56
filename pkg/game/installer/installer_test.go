package installer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeal.fr/cobalt/pkg/config"
	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

var (
	clientJar = []byte("client jar")
	brigJar   = []byte("brigadier jar")
	loaderJar = []byte("fabric loader jar")
	assetBody = []byte("ogg")
)

type fakeMeta struct {
	srv      *httptest.Server
	requests int64
	routes   map[string][]byte
}

func newFakeMeta(t *testing.T) *fakeMeta {
	t.Helper()
	f := &fakeMeta{routes: map[string][]byte{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.requests, 1)
		body, ok := f.routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(f.srv.Close)

	base := f.srv.URL
	assetHash := utils.BytesSHA1(assetBody)

	f.jsonRoute("/mc/manifest.json", map[string]any{
		"latest": map[string]any{"release": "1.20.1"},
		"versions": []map[string]any{
			{"id": "1.20.1", "type": "release", "url": base + "/v/1.20.1.json"},
			{"id": "23w31a", "type": "snapshot", "url": base + "/v/23w31a.json"},
		},
	})
	f.jsonRoute("/v/1.20.1.json", map[string]any{
		"id":        "1.20.1",
		"type":      "release",
		"mainClass": "net.minecraft.client.main.Main",
		"arguments": map[string]any{
			"game": []any{
				"--username", "${auth_player_name}",
				"--version", "${version_name}",
				"--uuid", "${auth_uuid}",
				"--accessToken", "${auth_access_token}",
				"--assetIndex", "${assets_index_name}",
				map[string]any{
					"rules": []any{map[string]any{"action": "allow", "features": map[string]any{"has_custom_resolution": true}}},
					"value": []any{"--width", "${resolution_width}"},
				},
			},
			"jvm": []any{
				map[string]any{
					"rules": []any{map[string]any{"action": "allow", "os": map[string]any{"name": "osx"}}},
					"value": "-XstartOnFirstThread",
				},
				"-Djava.library.path=${natives_directory}",
				"-cp", "${classpath}",
			},
		},
		"assetIndex": map[string]any{"id": "5", "url": base + "/assets/5.json"},
		"downloads": map[string]any{
			"client": map[string]any{"url": base + "/client.jar", "sha1": utils.BytesSHA1(clientJar)},
		},
		"libraries": []any{
			map[string]any{
				"name": "com.mojang:brigadier:1.0.18",
				"downloads": map[string]any{"artifact": map[string]any{
					"path": "com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar",
					"url":  base + "/lib/brigadier.jar",
					"sha1": utils.BytesSHA1(brigJar),
				}},
			},
		},
	})
	f.jsonRoute("/assets/5.json", map[string]any{
		"objects": map[string]any{"minecraft/sounds/click.ogg": map[string]any{"hash": assetHash, "size": len(assetBody)}},
	})
	f.routes["/resources/"+assetHash[:2]+"/"+assetHash] = assetBody
	f.routes["/client.jar"] = clientJar
	f.routes["/lib/brigadier.jar"] = brigJar

	f.jsonRoute("/fabric/v2/versions/loader/1.20.1/0.16.9/profile/json", map[string]any{
		"id":           "fabric-loader-0.16.9-1.20.1",
		"inheritsFrom": "1.20.1",
		"mainClass":    "net.fabricmc.loader.impl.launch.knot.KnotClient",
		"arguments":    map[string]any{"game": []any{}, "jvm": []any{"-DFabricMcEmu= net.minecraft.client.main.Main "}},
		"libraries": []any{
			map[string]any{"name": "net.fabricmc:fabric-loader:0.16.9", "url": base + "/maven/"},
		},
	})
	f.routes["/maven/net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar"] = loaderJar

	f.routes["/forge/net/minecraftforge/forge/maven-metadata.xml"] = []byte(`<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>net.minecraftforge</groupId>
  <artifactId>forge</artifactId>
  <versioning>
    <versions>
      <version>1.20.1-47.1.0</version>
      <version>1.20.1-47.2.0</version>
    </versions>
  </versioning>
</metadata>`)
	f.routes["/forge/net/minecraftforge/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0-installer.jar"] = []byte("installer")
	return f
}

func (f *fakeMeta) jsonRoute(path string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.routes[path] = data
}

func (f *fakeMeta) endpoints() config.EndpointSettings {
	return config.EndpointSettings{
		VersionManifest: f.srv.URL + "/mc/manifest.json",
		Resources:       f.srv.URL + "/resources",
		Libraries:       f.srv.URL + "/libraries",
		FabricMeta:      f.srv.URL + "/fabric",
		QuiltMeta:       f.srv.URL + "/quilt",
		ForgeMaven:      f.srv.URL + "/forge",
		NeoForgeMaven:   f.srv.URL + "/neoforge",
	}
}

func newTestClient(f *fakeMeta) *Client {
	log := logging.New(io.Discard)
	env := rules.Env{OS: "linux", Arch: "x86_64"}
	return NewClient(ClientOptions{
		Meta:       utils.NewMetaClient(0, 5*time.Second),
		Downloader: utils.NewDownloader(0, log),
		Endpoints:  f.endpoints(),
		Log:        log,
		Env:        &env,
	})
}

func TestInstallVersionDownloadsEverythingOnce(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()

	require.NoError(t, c.InstallVersion(context.Background(), "1.20.1", dir))

	assert.FileExists(t, filepath.Join(dir, "versions", "1.20.1", "1.20.1.json"))
	assert.FileExists(t, filepath.Join(dir, "versions", "1.20.1", "1.20.1.jar"))
	assert.FileExists(t, filepath.Join(dir, "libraries", "com", "mojang", "brigadier", "1.0.18", "brigadier-1.0.18.jar"))
	assert.FileExists(t, filepath.Join(dir, "assets", "indexes", "5.json"))
	hash := utils.BytesSHA1(assetBody)
	assert.FileExists(t, filepath.Join(dir, "assets", "objects", hash[:2], hash))

	first := atomic.LoadInt64(&f.requests)
	require.NoError(t, c.InstallVersion(context.Background(), "1.20.1", dir))
	// Only the asset index is fetched again.
	assert.Equal(t, first+1, atomic.LoadInt64(&f.requests))
}

func TestInstallVersionUnknown(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)

	err := c.InstallVersion(context.Background(), "0.0.1", t.TempDir())
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestInstallVersionNetworkFailure(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	delete(f.routes, "/client.jar")

	dir := t.TempDir()
	err := c.InstallVersion(context.Background(), "1.20.1", dir)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, IsInstalled(dir, "1.20.1"))

	f.routes["/client.jar"] = clientJar
	require.NoError(t, c.InstallVersion(context.Background(), "1.20.1", dir))
	assert.True(t, IsInstalled(dir, "1.20.1"))
}

func TestInstallFabricLikeFailedDownloadIsNotInstalled(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()
	delete(f.routes, "/maven/net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar")

	_, err := c.InstallFabricLike(context.Background(), FabricLikeRequest{
		Flavor: FlavorFabric, GameVersion: "1.20.1", LoaderVersion: "0.16.9", Dir: dir,
	})
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, IsInstalled(dir, "fabric-loader-0.16.9-1.20.1"))
}

func TestInstallFabricLikeAddsMissingParent(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()
	f.jsonRoute("/fabric/v2/versions/loader/1.20.1/0.16.9/profile/json", map[string]any{
		"id":        "fabric-loader-0.16.9-1.20.1",
		"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
	})

	id, err := c.InstallFabricLike(context.Background(), FabricLikeRequest{
		Flavor: FlavorFabric, GameVersion: "1.20.1", LoaderVersion: "0.16.9", Dir: dir,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "versions", id, id+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"inheritsFrom":"1.20.1"`)
	assert.True(t, IsInstalled(dir, "1.20.1"))
}

func TestListAvailableVersionsIncludesModded(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()
	require.NoError(t, writeVersionJSON(dir, "fabric-loader-0.16.9-1.20.1", []byte(`{"id":"fabric-loader-0.16.9-1.20.1","inheritsFrom":"1.20.1"}`)))

	versions, err := c.ListAvailableVersions(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []Version{
		{ID: "1.20.1", Type: "release"},
		{ID: "23w31a", Type: "snapshot"},
		{ID: "fabric-loader-0.16.9-1.20.1", Type: "modded"},
	}, versions)
}

func TestInstallFabricLike(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()

	id, err := c.InstallFabricLike(context.Background(), FabricLikeRequest{
		Flavor:        FlavorFabric,
		GameVersion:   "1.20.1",
		LoaderVersion: "0.16.9",
		Dir:           dir,
	})
	require.NoError(t, err)
	assert.Equal(t, "fabric-loader-0.16.9-1.20.1", id)
	assert.True(t, IsInstalled(dir, id))
	assert.True(t, IsInstalled(dir, "1.20.1"))
	assert.FileExists(t, filepath.Join(dir, "libraries", "net", "fabricmc", "fabric-loader", "0.16.9", "fabric-loader-0.16.9.jar"))

	argv, err := c.GetLaunchCommand(id, dir, Options{Username: "Steve"})
	require.NoError(t, err)
	assert.Contains(t, argv, "net.fabricmc.loader.impl.launch.knot.KnotClient")
	assert.NotContains(t, argv, "net.minecraft.client.main.Main")
	assert.Contains(t, argv, "-DFabricMcEmu= net.minecraft.client.main.Main ")
	cp := argv[indexOf(argv, "-cp")+1]
	assert.Contains(t, cp, "fabric-loader-0.16.9.jar")
	assert.Contains(t, cp, filepath.Join("versions", "1.20.1", "1.20.1.jar"))
}

func TestInstallFabricLikeUnknownLoader(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)

	_, err := c.InstallFabricLike(context.Background(), FabricLikeRequest{
		Flavor: FlavorQuilt, GameVersion: "1.20.1", LoaderVersion: "0.26.0", Dir: t.TempDir(),
	})
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestListForgeBuilds(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)

	builds, err := c.ListForgeBuilds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1.20.1-47.1.0", "1.20.1-47.2.0"}, builds)
}

func TestInstallForgeLike(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()

	var gotJava, gotJar string
	c.runInstaller = func(_ context.Context, java, jar, installDir string) error {
		gotJava, gotJar = java, jar
		profiles, err := os.ReadFile(filepath.Join(installDir, "launcher_profiles.json"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"profiles":{}}`, string(profiles))
		return writeVersionJSON(installDir, "1.20.1-forge-47.2.0", []byte(`{
			"id": "1.20.1-forge-47.2.0",
			"inheritsFrom": "1.20.1",
			"mainClass": "cpw.mods.bootstraplauncher.BootstrapLauncher",
			"arguments": {"game": ["--launchTarget", "forgeclient"], "jvm": ["-DlibraryDirectory=${library_directory}"]},
			"libraries": [{"name": "net.minecraftforge:forge:1.20.1-47.2.0:client", "downloads": {"artifact": {"path": "net/minecraftforge/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0-client.jar", "url": ""}}}]
		}`))
	}

	id, err := c.InstallForgeLike(context.Background(), ForgeLikeRequest{
		Flavor: FlavorForge,
		Build:  "1.20.1-47.2.0",
		Dir:    dir,
		Java:   "/opt/java17/bin/java",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.20.1-forge-47.2.0", id)
	assert.Equal(t, "/opt/java17/bin/java", gotJava)
	assert.True(t, strings.HasSuffix(gotJar, "forge-1.20.1-47.2.0-installer.jar"))
	assert.NoFileExists(t, gotJar)

	argv, err := c.GetLaunchCommand(id, dir, Options{Username: "Steve"})
	require.NoError(t, err)
	assert.Contains(t, argv, "cpw.mods.bootstraplauncher.BootstrapLauncher")
	assert.NotContains(t, argv, "net.minecraft.client.main.Main")
	assert.Equal(t, "forgeclient", argv[len(argv)-1])
	assert.Contains(t, argv, "-DlibraryDirectory="+filepath.Join(dir, "libraries"))
}

func TestInstallForgeLikeInstallerCreatesNothing(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	c.runInstaller = func(context.Context, string, string, string) error { return nil }

	_, err := c.InstallForgeLike(context.Background(), ForgeLikeRequest{Flavor: FlavorForge, Build: "1.20.1-47.2.0", Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrInstallerFailed)
}

func TestGetLaunchCommandModern(t *testing.T) {
	f := newFakeMeta(t)
	c := newTestClient(f)
	dir := t.TempDir()
	require.NoError(t, c.InstallVersion(context.Background(), "1.20.1", dir))

	argv, err := c.GetLaunchCommand("1.20.1", dir, Options{Username: "Steve"})
	require.NoError(t, err)

	assert.Equal(t, "java", argv[0])
	assert.Equal(t, "-Djava.library.path="+filepath.Join(dir, "versions", "1.20.1", "natives"), argv[1])
	assert.Equal(t, "-cp", argv[2])
	assert.Equal(t, "net.minecraft.client.main.Main", argv[4])
	assert.NotContains(t, argv, "-XstartOnFirstThread")
	assert.NotContains(t, argv, "--width")

	assert.Equal(t, "Steve", argv[indexOf(argv, "--username")+1])
	assert.Equal(t, OfflineUUID("Steve"), argv[indexOf(argv, "--uuid")+1])
	assert.Equal(t, "0", argv[indexOf(argv, "--accessToken")+1])
	assert.Equal(t, "5", argv[indexOf(argv, "--assetIndex")+1])

	argv, err = c.GetLaunchCommand("1.20.1", dir, Options{
		Username: "Steve",
		UUID:     "abc",
		Token:    "tok",
		Features: []rules.Feature{{AKey: "has_custom_resolution", Flag: "resolution_width", Value: "1920"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", argv[indexOf(argv, "--uuid")+1])
	assert.Equal(t, "tok", argv[indexOf(argv, "--accessToken")+1])
	assert.Equal(t, "1920", argv[indexOf(argv, "--width")+1])
}

func TestGetLaunchCommandLegacy(t *testing.T) {
	c := NewClient(ClientOptions{Log: logging.New(io.Discard), Env: &rules.Env{OS: "linux", Arch: "x86_64"}})
	dir := t.TempDir()
	require.NoError(t, writeVersionJSON(dir, "1.8.9", []byte(`{
		"id": "1.8.9",
		"type": "release",
		"mainClass": "net.minecraft.client.main.Main",
		"minecraftArguments": "--username ${auth_player_name} --session ${auth_session} --userType ${user_type} --gameDir ${game_directory}",
		"assets": "1.8",
		"libraries": [
			{"name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4", "natives": {"linux": "natives-linux"},
			 "downloads": {"classifiers": {"natives-linux": {"path": "lwjgl-platform-natives-linux.jar"}}}}
		]
	}`)))

	argv, err := c.GetLaunchCommand("1.8.9", dir, Options{Username: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"java",
		"-Djava.library.path=" + filepath.Join(dir, "versions", "1.8.9", "natives"),
		"-cp",
		filepath.Join(dir, "versions", "1.8.9", "1.8.9.jar"),
		"net.minecraft.client.main.Main",
		"--username", "Alex",
		"--session", "0",
		"--userType", "legacy",
		"--gameDir", dir,
	}, argv)
}

func TestGetLaunchCommandSubstitutesOnce(t *testing.T) {
	c := NewClient(ClientOptions{Log: logging.New(io.Discard), Env: &rules.Env{OS: "linux", Arch: "x86_64"}})
	dir := t.TempDir()
	require.NoError(t, writeVersionJSON(dir, "1.8.9", []byte(`{
		"id": "1.8.9",
		"mainClass": "net.minecraft.client.main.Main",
		"minecraftArguments": "--username ${auth_player_name} --server ${quickPlayMultiplayer} --version ${version_name}"
	}`)))

	for i := 0; i < 20; i++ {
		argv, err := c.GetLaunchCommand("1.8.9", dir, Options{
			Username: "${version_name}",
			Features: []rules.Feature{{Flag: "quickPlayMultiplayer", Value: "${auth_player_name}"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "${version_name}", argv[indexOf(argv, "--username")+1])
		assert.Equal(t, "${auth_player_name}", argv[indexOf(argv, "--server")+1])
		assert.Equal(t, "1.8.9", argv[indexOf(argv, "--version")+1])
	}
}

func TestGetLaunchCommandNotInstalled(t *testing.T) {
	c := NewClient(ClientOptions{Log: logging.New(io.Discard)})
	_, err := c.GetLaunchCommand("1.20.1", t.TempDir(), Options{Username: "Steve"})
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestOfflineUUID(t *testing.T) {
	id := OfflineUUID("Steve")
	assert.Len(t, id, 32)
	assert.Equal(t, byte('3'), id[12])
	assert.Equal(t, id, OfflineUUID("Steve"))
	assert.NotEqual(t, id, OfflineUUID("Alex"))
}

func TestGameVersionOfBuilds(t *testing.T) {
	v, ok := NeoForgeGameVersion("20.4.237")
	assert.True(t, ok)
	assert.Equal(t, "1.20.4", v)

	v, ok = NeoForgeGameVersion("21.0.167")
	assert.True(t, ok)
	assert.Equal(t, "1.21", v)

	_, ok = NeoForgeGameVersion("47.2")
	assert.False(t, ok)

	v, ok = ForgeGameVersion("1.20.1-47.2.0")
	assert.True(t, ok)
	assert.Equal(t, "1.20.1", v)
}

func TestEnsureLauncherProfilesKeepsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launcher_profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings":{"locale":"en"}}`), 0o644))

	require.NoError(t, ensureLauncherProfiles(dir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"settings":{"locale":"en"},"profiles":{}}`, string(data))
}

func indexOf(argv []string, s string) int {
	for i, a := range argv {
		if a == s {
			return i
		}
	}
	return -1
}
