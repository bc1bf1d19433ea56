package builders

import (
	"path/filepath"
	"strings"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/utils"
)

type LibrariesBuilder struct {
	GameDir string
	// MavenBase serves maven style entries that carry no repository url.
	MavenBase string
	Libraries []manifests.Library
	Env       rules.Env
}

func NewLibrariesBuilder(gameDir, mavenBase string, libraries []manifests.Library, env rules.Env) *LibrariesBuilder {
	return &LibrariesBuilder{GameDir: gameDir, MavenBase: mavenBase, Libraries: libraries, Env: env}
}

func (l *LibrariesBuilder) GetFolderPath() string {
	return filepath.Join(l.GameDir, "libraries")
}

// Path returns where lib lives on disk, or "" when it has no main artifact.
func (l *LibrariesBuilder) Path(lib manifests.Library) string {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil && lib.Downloads.Artifact.Path != "" {
		return filepath.Join(l.GetFolderPath(), filepath.FromSlash(lib.Downloads.Artifact.Path))
	}
	if lib.Downloads != nil && lib.Downloads.Artifact == nil && lib.Natives != nil {
		return ""
	}
	rel, err := utils.MavenPath(lib.Name)
	if err != nil {
		return ""
	}
	return filepath.Join(l.GetFolderPath(), filepath.FromSlash(rel))
}

// Allowed keeps the libraries whose rules admit the current environment.
func (l *LibrariesBuilder) Allowed() []manifests.Library {
	out := []manifests.Library{}
	for _, lib := range l.Libraries {
		if rules.ShouldInclude(lib.Rules, l.Env) {
			out = append(out, lib)
		}
	}
	return out
}

// Jobs lists the main artifacts to download. Entries without a url (installer
// generated Forge jars) are left to the installer that produced them.
func (l *LibrariesBuilder) Jobs() []Job {
	jobs := []Job{}
	for _, lib := range l.Allowed() {
		if lib.Downloads != nil && lib.Downloads.Artifact != nil {
			art := lib.Downloads.Artifact
			if art.URL == "" {
				continue
			}
			jobs = append(jobs, Job{
				Name: lib.Name,
				URL:  art.URL,
				Dest: l.Path(lib),
				Sha1: art.Sha1,
				Size: art.Size,
			})
			continue
		}
		if lib.Downloads != nil {
			continue
		}

		base := lib.URL
		if base == "" {
			base = l.MavenBase
		}
		if base == "" {
			continue
		}
		url, rel, err := utils.BuildDownloadURLFromMavenPath(base, lib.Name)
		if err != nil {
			continue
		}
		jobs = append(jobs, Job{
			Name: lib.Name,
			URL:  url,
			Dest: filepath.Join(l.GetFolderPath(), filepath.FromSlash(rel)),
			Sha1: lib.Sha1,
			Size: lib.Size,
		})
	}
	return jobs
}

// NativeJobs lists the classifier jars of legacy natives libraries.
func (l *LibrariesBuilder) NativeJobs() []Job {
	jobs := []Job{}
	for _, lib := range l.Allowed() {
		art, ok := rules.NativeArtifact(lib, l.Env)
		if !ok || art.URL == "" {
			continue
		}
		jobs = append(jobs, Job{
			Name: lib.Name + " natives",
			URL:  art.URL,
			Dest: filepath.Join(l.GetFolderPath(), filepath.FromSlash(art.Path)),
			Sha1: art.Sha1,
			Size: art.Size,
		})
	}
	return jobs
}

// IsNativesJar reports whether a modern library entry only carries natives
// (org.lwjgl:lwjgl:3.3.1:natives-linux).
func IsNativesJar(lib manifests.Library) bool {
	parts := strings.Split(lib.Name, ":")
	return len(parts) > 3 && strings.HasPrefix(parts[3], "natives-")
}
