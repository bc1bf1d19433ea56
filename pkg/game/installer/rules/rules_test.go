package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
)

var (
	linux   = Env{OS: "linux", Arch: "x86_64"}
	windows = Env{OS: "windows", Arch: "x86_64", Version: "10.0"}
	mac     = Env{OS: "osx", Arch: "arm64"}
)

func TestShouldIncludeOSRules(t *testing.T) {
	allowAllButOSX := []manifests.Rule{
		{Action: "allow"},
		{Action: "disallow", OS: &manifests.OSRule{Name: "osx"}},
	}
	assert.True(t, ShouldInclude(allowAllButOSX, linux))
	assert.True(t, ShouldInclude(allowAllButOSX, windows))
	assert.False(t, ShouldInclude(allowAllButOSX, mac))

	onlyMac := []manifests.Rule{{Action: "allow", OS: &manifests.OSRule{Name: "macos"}}}
	assert.True(t, ShouldInclude(onlyMac, mac))
	assert.False(t, ShouldInclude(onlyMac, linux))

	assert.True(t, ShouldInclude(nil, linux))
}

func TestShouldIncludeArchAndVersion(t *testing.T) {
	x86 := []manifests.Rule{{Action: "allow", OS: &manifests.OSRule{Arch: "x86"}}}
	assert.False(t, ShouldInclude(x86, linux))
	assert.True(t, ShouldInclude(x86, Env{OS: "windows", Arch: "x86"}))

	win10 := []manifests.Rule{{Action: "allow", OS: &manifests.OSRule{Name: "windows", Version: `^10\.`}}}
	assert.True(t, ShouldInclude(win10, windows))
	assert.False(t, ShouldInclude(win10, Env{OS: "windows", Arch: "x86_64", Version: "6.1"}))
}

func TestShouldIncludeFeatures(t *testing.T) {
	resolution := []manifests.Rule{{Action: "allow", Features: map[string]bool{"has_custom_resolution": true}}}
	assert.False(t, ShouldInclude(resolution, linux))
	assert.True(t, ShouldInclude(resolution, linux, Feature{AKey: "has_custom_resolution"}))

	notDemo := []manifests.Rule{{Action: "allow", Features: map[string]bool{"is_demo_user": false}}}
	assert.True(t, ShouldInclude(notDemo, linux))
}

func TestNativeArtifact(t *testing.T) {
	lib := manifests.Library{
		Name:    "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
		Natives: map[string]string{"linux": "natives-linux", "windows": "natives-windows-${arch}"},
		Downloads: &manifests.LibraryDownloads{Classifiers: map[string]*manifests.Artifact{
			"natives-linux":      {Path: "lwjgl-platform-natives-linux.jar"},
			"natives-windows-64": {Path: "lwjgl-platform-natives-windows-64.jar"},
		}},
	}

	art, ok := NativeArtifact(lib, linux)
	assert.True(t, ok)
	assert.Equal(t, "lwjgl-platform-natives-linux.jar", art.Path)

	art, ok = NativeArtifact(lib, windows)
	assert.True(t, ok)
	assert.Equal(t, "lwjgl-platform-natives-windows-64.jar", art.Path)

	_, ok = NativeArtifact(lib, mac)
	assert.False(t, ok)

	_, ok = NativeArtifact(manifests.Library{Name: "com.google:gson:2.10"}, linux)
	assert.False(t, ok)
}
