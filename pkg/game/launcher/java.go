package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"limeal.fr/cobalt/pkg/logging"
)

// JavaRuntime is a java executable with its detected major version. Owned
// runtimes were provisioned under the launcher's java directory.
type JavaRuntime struct {
	Path    string
	Major   int
	Version string
	Root    string
	Owned   bool
}

// Resolution is the outcome of Resolve. A non-empty Warning means the
// compatibility check could not be completed; launching is still allowed.
type Resolution struct {
	Runtime  JavaRuntime
	Required int
	Warning  string
}

// ProbeFunc returns the raw version string reported by javaPath ("17.0.10").
type ProbeFunc func(ctx context.Context, javaPath string) (string, error)

type Resolver struct {
	Probe    ProbeFunc
	LookPath func(file string) (string, error)
	Log      *logging.Logger
}

func NewResolver(log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Default()
	}
	return &Resolver{Probe: ProbeJava, LookPath: exec.LookPath, Log: log}
}

// Resolve checks javaPath against the Java major versionID needs. An empty
// javaPath falls back to the java found on PATH without any check.
func (r *Resolver) Resolve(ctx context.Context, versionID, javaPath string) (*Resolution, error) {
	required, known := RequiredJavaMajor(versionID)
	res := &Resolution{Required: required}

	if javaPath == "" {
		path := "java"
		if p, err := r.LookPath("java"); err == nil {
			path = p
		}
		res.Runtime = JavaRuntime{Path: path}
		res.Warning = "java path is not configured, using system java without a compatibility check"
		return res, nil
	}

	res.Runtime = JavaRuntime{Path: javaPath}
	raw, err := r.Probe(ctx, javaPath)
	if err != nil {
		r.Log.Debugf("java probe of %s failed: %v", javaPath, err)
	}
	major := MajorOf(raw)
	if err != nil || major == 0 {
		res.Warning = fmt.Sprintf("could not determine the version of %s, compatibility not checked", javaPath)
		return res, nil
	}
	res.Runtime.Major = major
	res.Runtime.Version = raw

	if !known {
		res.Warning = fmt.Sprintf("%s is not a release version id, java compatibility not checked", versionID)
		return res, nil
	}
	if major < required {
		return nil, &IncompatibleRuntimeError{Runtime: res.Runtime, Required: required}
	}
	return res, nil
}

var versionRe = regexp.MustCompile(`version "([^"]+)"`)

// ProbeJava runs "<javaPath> -version". Java prints it on stderr, some
// wrappers on stdout, so both are read.
func ProbeJava(ctx context.Context, javaPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, javaPath, "-version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", javaPath, err)
	}
	m := versionRe.FindStringSubmatch(string(out))
	if len(m) < 2 {
		return "", fmt.Errorf("failed to parse version from: %s", strings.TrimSpace(string(out)))
	}
	return m[1], nil
}

// FindJava looks through the usual install locations of the host for a java
// of the given major version. Zero accepts any version >= 8.
func FindJava(ctx context.Context, major int, probe ProbeFunc) (*JavaRuntime, error) {
	if probe == nil {
		probe = ProbeJava
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = darwinCandidates(ctx)
	case "linux":
		candidates = linuxCandidates(ctx)
	case "windows":
		candidates = windowsCandidates(ctx)
	default:
		candidates = whichAll(ctx, "java")
	}
	if p, _ := exec.LookPath("java"); p != "" {
		candidates = append(candidates, p)
	}

	seen := map[string]struct{}{}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, _ := filepath.Abs(c)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		v, err := probe(ctx, abs)
		if err != nil {
			continue
		}
		got := MajorOf(v)
		if (major == 0 && got >= 8) || (major != 0 && got == major) {
			return &JavaRuntime{Path: abs, Major: got, Version: v}, nil
		}
	}

	if major == 0 {
		return nil, fmt.Errorf("%w: no java installation found", ErrExecutableNotFound)
	}
	return nil, fmt.Errorf("%w: no java %d installation found", ErrExecutableNotFound, major)
}

// -------------------- macOS --------------------

func darwinCandidates(ctx context.Context) []string {
	homes := []string{}
	for _, g := range []string{
		"/Library/Java/JavaVirtualMachines/*/Contents/Home",
		filepath.Join(os.Getenv("HOME"), "Library/Java/JavaVirtualMachines/*/Contents/Home"),
		"/opt/homebrew/opt/openjdk*/libexec/openjdk.jdk/Contents/Home",
		"/usr/local/opt/openjdk*/libexec/openjdk.jdk/Contents/Home",
	} {
		if matches, _ := filepath.Glob(g); len(matches) > 0 {
			homes = append(homes, matches...)
		}
	}

	cands := []string{}
	for _, h := range homes {
		cands = append(cands, filepath.Join(h, "bin", "java"))
	}
	return append(cands, whichAll(ctx, "java")...)
}

// -------------------- Linux --------------------

func linuxCandidates(ctx context.Context) []string {
	var cands []string

	if out, err := exec.CommandContext(ctx, "update-alternatives", "--list", "java").Output(); err == nil {
		for _, l := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if l != "" {
				cands = append(cands, strings.TrimSpace(l))
			}
		}
	}

	for _, g := range []string{
		"/usr/lib/jvm/*/bin/java",
		"/usr/java/*/bin/java",
	} {
		if matches, _ := filepath.Glob(g); len(matches) > 0 {
			cands = append(cands, matches...)
		}
	}

	return append(cands, whichAll(ctx, "java")...)
}

// -------------------- Windows --------------------

func windowsCandidates(ctx context.Context) []string {
	var cands []string
	cands = append(cands, whereAll(ctx, "java.exe")...)
	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		cands = append(cands, filepath.Join(jh, "bin", "java.exe"))
	}
	for _, root := range []string{
		os.Getenv("ProgramFiles"),
		os.Getenv("ProgramFiles(x86)"),
		`C:\Program Files`,
		`C:\Program Files (x86)`,
	} {
		if root == "" {
			continue
		}
		for _, g := range []string{
			filepath.Join(root, "Java", "*", "bin", "java.exe"),
			filepath.Join(root, "Eclipse Adoptium", "jdk-*", "bin", "java.exe"),
			filepath.Join(root, "Zulu", "zulu*", "bin", "java.exe"),
		} {
			if matches, _ := filepath.Glob(g); len(matches) > 0 {
				cands = append(cands, matches...)
			}
		}
	}
	return cands
}

// -------------------- Generic helpers --------------------

func whichAll(ctx context.Context, bin string) []string {
	out, err := exec.CommandContext(ctx, "which", "-a", bin).Output()
	if err != nil {
		if p, _ := exec.LookPath(bin); p != "" {
			return []string{p}
		}
		return nil
	}
	return splitLines(string(out))
}

func whereAll(ctx context.Context, bin string) []string {
	out, err := exec.CommandContext(ctx, "where", bin).Output()
	if err != nil {
		return nil
	}
	return splitLines(string(out))
}

func splitLines(s string) []string {
	var res []string
	for _, l := range strings.Split(strings.TrimSpace(s), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}
