package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

const DefaultTemurinBase = "https://github.com/adoptium/temurin"

// RuntimeStore persists the provisioned runtime as the configured one.
type RuntimeStore interface {
	SetJavaRuntime(path string, major int) error
}

// Fetcher downloads url into dest. *utils.Downloader satisfies it.
type Fetcher interface {
	Download(ctx context.Context, url, dest, description string) error
}

// HostPlatform returns the platform and arch names used by the Temurin table.
func HostPlatform() (platform, arch string) {
	arch = runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	}
	return runtime.GOOS, arch
}

type temurinRelease struct {
	tag     string // release tag, url escaped
	version string // version embedded in the file name
}

// Pinned Temurin JDK releases.
var temurinReleases = map[int]temurinRelease{
	8:  {tag: "jdk8u412-b07", version: "8u412b07"},
	11: {tag: "jdk-11.0.22%2B7", version: "11.0.22_7"},
	17: {tag: "jdk-17.0.10%2B7", version: "17.0.10_7"},
	21: {tag: "jdk-21.0.2%2B13", version: "21.0.2_13"},
}

// temurinArch maps supported platform/arch pairs to the Temurin arch token.
// These releases ship no Windows aarch64 JDK.
var temurinArch = map[string]map[string]string{
	"linux":   {"x64": "x64", "arm64": "aarch64"},
	"windows": {"x64": "x64"},
}

// TemurinURL returns the JDK archive url and its extension ("zip" or "tar.gz").
func TemurinURL(base string, major int, platform, arch string) (string, string, error) {
	release, ok := temurinReleases[major]
	if !ok {
		return "", "", fmt.Errorf("%w: no java %d build", ErrUnsupportedPlatform, major)
	}
	token, ok := temurinArch[platform][arch]
	if !ok {
		return "", "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, platform, arch)
	}

	ext := "tar.gz"
	if platform == "windows" {
		ext = "zip"
	}
	if base == "" {
		base = DefaultTemurinBase
	}
	url := fmt.Sprintf("%s%d-binaries/releases/download/%s/OpenJDK%dU-jdk_%s_%s_hotspot_%s.%s",
		strings.TrimSuffix(base, "/"), major, release.tag, major, token, platform, release.version, ext)
	return url, ext, nil
}

type Provisioner struct {
	// Root is the managed java directory; runtimes go to Root/java_<major>.
	Root    string
	BaseURL string
	Fetcher Fetcher
	Store   RuntimeStore
	Log     *logging.Logger
}

func NewProvisioner(root, baseURL string, fetcher Fetcher, store RuntimeStore, log *logging.Logger) *Provisioner {
	if log == nil {
		log = logging.Default()
	}
	return &Provisioner{Root: root, BaseURL: baseURL, Fetcher: fetcher, Store: store, Log: log}
}

// Provision downloads and unpacks a Temurin JDK for major, then records it as
// the configured runtime. Partial files are left in place on failure; the
// next attempt overwrites them.
func (p *Provisioner) Provision(ctx context.Context, major int, platform, arch string) (*JavaRuntime, error) {
	url, ext, err := TemurinURL(p.BaseURL, major, platform, arch)
	if err != nil {
		return nil, err
	}

	installDir := filepath.Join(p.Root, fmt.Sprintf("java_%d", major))
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return nil, err
	}

	archive := filepath.Join(installDir, "java."+ext)
	p.Log.Infof("Downloading Java %d from %s", major, url)
	if err := p.Fetcher.Download(ctx, url, archive, fmt.Sprintf("Java %d", major)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	if ext == "zip" {
		err = utils.ExtractZip(archive, installDir)
	} else {
		err = utils.ExtractTarGz(archive, installDir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtract, err)
	}
	if err := os.Remove(archive); err != nil {
		p.Log.Warnf("failed to remove %s: %v", archive, err)
	}

	javaPath, err := findExecutable(installDir, platform)
	if err != nil {
		return nil, err
	}

	if p.Store != nil {
		if err := p.Store.SetJavaRuntime(javaPath, major); err != nil {
			return nil, fmt.Errorf("failed to save java runtime: %w", err)
		}
	}

	p.Log.Infof("Java %d installed at %s", major, javaPath)
	return &JavaRuntime{Path: javaPath, Major: major, Root: installDir, Owned: true}, nil
}

var errFound = errors.New("found")

// findExecutable walks root for bin/java (bin/java.exe on Windows) and
// returns the first regular file found.
func findExecutable(root, platform string) (string, error) {
	name := "java"
	if platform == "windows" {
		name = "java.exe"
	}

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != name || filepath.Base(filepath.Dir(path)) != "bin" {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		found = path
		return errFound
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("%w: %w", ErrExecutableNotFound, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: no bin/%s under %s", ErrExecutableNotFound, name, root)
	}

	abs, err := filepath.Abs(found)
	if err != nil {
		return found, nil
	}
	return abs, nil
}
