package installer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/go-resty/resty/v2"

	"limeal.fr/cobalt/pkg/config"
	"limeal.fr/cobalt/pkg/game/installer/builders"
	"limeal.fr/cobalt/pkg/game/installer/manifests"
	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

const (
	LauncherName    = "cobalt"
	LauncherVersion = "0.8"
)

// Client implements Service against the Mojang, Fabric, Quilt, Forge and
// NeoForge endpoints configured in launcher.toml.
type Client struct {
	meta       *resty.Client
	downloader *utils.Downloader
	pool       *builders.Pool
	endpoints  config.EndpointSettings
	log        *logging.Logger
	env        rules.Env

	// runInstaller executes a Forge-like installer jar.
	runInstaller func(ctx context.Context, java, jar, dir string) error

	mu       sync.Mutex
	manifest *manifests.MCManifest
}

type ClientOptions struct {
	Meta       *resty.Client
	Downloader *utils.Downloader
	Endpoints  config.EndpointSettings
	Log        *logging.Logger
	Progress   utils.ProgressCallback
	Env        *rules.Env
}

func NewClient(opts ClientOptions) *Client {
	if opts.Log == nil {
		opts.Log = logging.Default()
	}
	if opts.Meta == nil {
		opts.Meta = utils.NewMetaClient(3, 0)
	}
	if opts.Downloader == nil {
		opts.Downloader = utils.NewDownloader(4, opts.Log)
	}
	env := rules.DetectEnv()
	if opts.Env != nil {
		env = *opts.Env
	}

	c := &Client{
		meta:       opts.Meta,
		downloader: opts.Downloader,
		pool:       &builders.Pool{Fetcher: opts.Downloader, Progress: opts.Progress},
		endpoints:  opts.Endpoints,
		log:        opts.Log,
		env:        env,
	}
	c.runInstaller = c.execInstaller
	return c
}

func versionDir(dir, id string) string {
	return filepath.Join(dir, "versions", id)
}

func versionJSONPath(dir, id string) string {
	return filepath.Join(versionDir(dir, id), id+".json")
}

// IsInstalled reports whether versions/<id>/<id>.json exists under dir.
func IsInstalled(dir, id string) bool {
	if id == "" {
		return false
	}
	info, err := os.Stat(versionJSONPath(dir, id))
	return err == nil && !info.IsDir()
}

func readVersionJSON(dir, id string) (*manifests.VersionJSON, error) {
	data, err := os.ReadFile(versionJSONPath(dir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s is not installed", ErrVersionNotFound, id)
		}
		return nil, err
	}
	var vj manifests.VersionJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		return nil, fmt.Errorf("failed to decode %s.json: %w", id, err)
	}
	if vj.ID == "" {
		vj.ID = id
	}
	return &vj, nil
}

func writeVersionJSON(dir, id string, data []byte) error {
	if err := os.MkdirAll(versionDir(dir, id), 0o755); err != nil {
		return err
	}
	return utils.WriteFileAtomic(versionJSONPath(dir, id), data, 0o644)
}

// chain returns id's version json followed by its inheritsFrom ancestors.
func chain(dir, id string) ([]*manifests.VersionJSON, error) {
	out := []*manifests.VersionJSON{}
	seen := map[string]bool{}
	for id != "" {
		if seen[id] {
			return nil, fmt.Errorf("inheritsFrom cycle at %s", id)
		}
		seen[id] = true

		vj, err := readVersionJSON(dir, id)
		if err != nil {
			return nil, err
		}
		out = append(out, vj)
		id = vj.InheritsFrom
	}
	return out, nil
}

func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	data, err := utils.GetBytes(ctx, c.meta, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return data, nil
}

func (c *Client) execInstaller(ctx context.Context, java, jar, dir string) error {
	cmd := exec.CommandContext(ctx, java, "-jar", jar, "--installClient", dir)
	cmd.Dir = dir
	out := &logWriter{log: c.log}
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallerFailed, err)
	}
	out.Flush()
	return nil
}
