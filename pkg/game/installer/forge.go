package installer

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/buger/jsonparser"

	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

type mavenMetadata struct {
	Versions []string `xml:"versioning>versions>version"`
}

// ListForgeBuilds returns every Forge build published on the maven, oldest first.
func (c *Client) ListForgeBuilds(ctx context.Context) ([]string, error) {
	url := strings.TrimSuffix(c.endpoints.ForgeMaven, "/") + "/net/minecraftforge/forge/maven-metadata.xml"
	data, err := c.getBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	var meta mavenMetadata
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: malformed forge metadata: %w", ErrNetwork, err)
	}
	return meta.Versions, nil
}

func (c *Client) installerURL(req ForgeLikeRequest) (string, error) {
	if req.InstallerURL != "" {
		return req.InstallerURL, nil
	}
	switch req.Flavor {
	case FlavorForge:
		return fmt.Sprintf("%s/net/minecraftforge/forge/%s/forge-%s-installer.jar",
			strings.TrimSuffix(c.endpoints.ForgeMaven, "/"), req.Build, req.Build), nil
	case FlavorNeoForge:
		return fmt.Sprintf("%s/releases/net/neoforged/neoforge/%s/neoforge-%s-installer.jar",
			strings.TrimSuffix(c.endpoints.NeoForgeMaven, "/"), req.Build, req.Build), nil
	}
	return "", fmt.Errorf("unsupported forge-like flavor %q", req.Flavor)
}

func gameVersionOf(req ForgeLikeRequest) (string, bool) {
	if req.Flavor == FlavorNeoForge {
		return NeoForgeGameVersion(req.Build)
	}
	return ForgeGameVersion(req.Build)
}

// expectedID is the id the official installers usually write.
func expectedID(req ForgeLikeRequest) string {
	if req.Flavor == FlavorNeoForge {
		return "neoforge-" + req.Build
	}
	game, loader, _ := strings.Cut(req.Build, "-")
	return game + "-forge-" + loader
}

// InstallForgeLike runs the official Forge or NeoForge installer against dir
// and returns the version id it created.
func (c *Client) InstallForgeLike(ctx context.Context, req ForgeLikeRequest) (string, error) {
	if req.Build == "" {
		return "", errors.New("build is required")
	}
	installerURL, err := c.installerURL(req)
	if err != nil {
		return "", err
	}

	if game, ok := gameVersionOf(req); ok {
		if err := c.InstallVersion(ctx, game, req.Dir); err != nil {
			return "", fmt.Errorf("failed to install %s: %w", game, err)
		}
	}

	jar := filepath.Join(req.Dir, ".installers", fmt.Sprintf("%s-%s-installer.jar", req.Flavor, req.Build))
	if err := c.downloader.Download(ctx, installerURL, jar, fmt.Sprintf("%s %s installer", req.Flavor, req.Build)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer os.Remove(jar)

	if err := ensureLauncherProfiles(req.Dir); err != nil {
		return "", err
	}

	before := listVersionIDs(req.Dir)
	java := req.Java
	if java == "" {
		java = "java"
	}
	c.log.Infof("Running %s installer %s", req.Flavor, req.Build)
	if err := c.runInstaller(ctx, java, jar, req.Dir); err != nil {
		return "", err
	}

	id := pickNewID(before, listVersionIDs(req.Dir), req)
	if id == "" {
		return "", fmt.Errorf("%w: no version was created by the %s installer", ErrInstallerFailed, req.Flavor)
	}

	if err := c.InstallVersion(ctx, id, req.Dir); err != nil {
		return "", err
	}
	return id, nil
}

func listVersionIDs(dir string) map[string]bool {
	ids := map[string]bool{}
	entries, err := os.ReadDir(filepath.Join(dir, "versions"))
	if err != nil {
		return ids
	}
	for _, e := range entries {
		if e.IsDir() && IsInstalled(dir, e.Name()) {
			ids[e.Name()] = true
		}
	}
	return ids
}

func pickNewID(before, after map[string]bool, req ForgeLikeRequest) string {
	created := []string{}
	for id := range after {
		if !before[id] {
			created = append(created, id)
		}
	}
	sort.Strings(created)

	marker := string(req.Flavor)
	for _, id := range created {
		if strings.Contains(strings.ToLower(id), marker) {
			return id
		}
	}
	if len(created) > 0 {
		return created[0]
	}

	// Reinstalling an existing build leaves versions/ unchanged.
	if fallback := expectedID(req); after[fallback] {
		return fallback
	}
	return ""
}

// ensureLauncherProfiles creates the launcher_profiles.json the installers
// refuse to run without, keeping any existing content.
func ensureLauncherProfiles(dir string) error {
	path := filepath.Join(dir, "launcher_profiles.json")
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	if _, _, _, err := jsonparser.Get(data, "profiles"); err == nil {
		return nil
	}
	updated, err := jsonparser.Set(data, []byte("{}"), "profiles")
	if err != nil {
		// Unparseable content is replaced.
		updated = []byte(`{"profiles":{}}`)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, updated, 0o644)
}

// logWriter forwards installer output to the debug log line by line.
type logWriter struct {
	log *logging.Logger
	mu  sync.Mutex
	buf []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(string(w.buf[:i])); line != "" {
			w.log.Debugf("[installer] %s", line)
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if line := strings.TrimSpace(string(w.buf)); line != "" {
		w.log.Debugf("[installer] %s", line)
	}
	w.buf = nil
}
