package rules

import (
	"regexp"
	"runtime"
	"strings"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
)

// Env is the host as seen by version json rules.
type Env struct {
	OS      string // windows | osx | linux
	Arch    string // x86_64 | x86 | arm64 | arm32
	Version string // os version, matched by rules carrying os.version
}

// Feature enables rule gated arguments, e.g. quick play or custom resolution.
type Feature struct {
	AKey  string // has_custom_resolution
	Flag  string // placeholder it fills: resolution_width
	Value string // 1920
}

func DetectEnv() Env {
	osName := "linux"
	switch runtime.GOOS {
	case "windows":
		osName = "windows"
	case "darwin":
		osName = "osx"
	}
	return Env{
		OS:   osName,
		Arch: map[string]string{"amd64": "x86_64", "arm64": "arm64", "386": "x86", "arm": "arm32"}[runtime.GOARCH],
	}
}

// Is64Bit reports whether the ${arch} natives placeholder resolves to 64.
func (e Env) Is64Bit() bool {
	return e.Arch == "x86_64" || e.Arch == "arm64"
}

// ShouldInclude evaluates rules in order; the last matching rule decides.
// An empty list always allows.
func ShouldInclude(rulesList []manifests.Rule, env Env, features ...Feature) bool {
	if len(rulesList) == 0 {
		return true
	}
	allowed := false
	for _, r := range rulesList {
		if !matchesOS(r.OS, env) || !matchesFeatures(r.Features, features) {
			continue
		}
		allowed = r.Action == "allow"
	}
	return allowed
}

func matchesOS(rule *manifests.OSRule, env Env) bool {
	if rule == nil {
		return true
	}
	if rule.Name != "" {
		name := strings.ToLower(rule.Name)
		// Mojang historically uses "osx"; newer manifests use "macos".
		if name == "macos" {
			name = "osx"
		}
		if name != env.OS {
			return false
		}
	}
	if rule.Arch != "" && !strings.EqualFold(rule.Arch, env.Arch) {
		return false
	}
	if rule.Version != "" {
		re, err := regexp.Compile(rule.Version)
		if err != nil || !re.MatchString(env.Version) {
			return false
		}
	}
	return true
}

func matchesFeatures(required map[string]bool, features []Feature) bool {
	for key, want := range required {
		enabled := false
		for _, f := range features {
			if f.AKey == key {
				enabled = true
				break
			}
		}
		if enabled != want {
			return false
		}
	}
	return true
}

// NativeClassifier returns the classifier key of a legacy natives library
// (one with a "natives" map) for env.
func NativeClassifier(lib manifests.Library, env Env) (string, bool) {
	if lib.Natives == nil {
		return "", false
	}
	classifier, ok := lib.Natives[env.OS]
	if !ok {
		return "", false
	}
	bits := "32"
	if env.Is64Bit() {
		bits = "64"
	}
	return strings.ReplaceAll(classifier, "${arch}", bits), true
}

// NativeArtifact returns the downloadable natives jar of a legacy library.
func NativeArtifact(lib manifests.Library, env Env) (*manifests.Artifact, bool) {
	classifier, ok := NativeClassifier(lib, env)
	if !ok || lib.Downloads == nil || lib.Downloads.Classifiers == nil {
		return nil, false
	}
	artifact := lib.Downloads.Classifiers[classifier]
	return artifact, artifact != nil
}
