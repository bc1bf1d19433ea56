package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"limeal.fr/cobalt/pkg/game/installer/builders"
	"limeal.fr/cobalt/pkg/game/installer/manifests"
)

func (c *Client) versionManifest(ctx context.Context) (*manifests.MCManifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.manifest != nil {
		return c.manifest, nil
	}

	var manifest manifests.MCManifest
	resp, err := c.meta.R().SetContext(ctx).SetResult(&manifest).Get(c.endpoints.VersionManifest)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch version manifest: %w", ErrNetwork, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: version manifest returned %d", ErrNetwork, resp.StatusCode())
	}
	c.manifest = &manifest
	return c.manifest, nil
}

// ListAvailableVersions returns the Mojang catalogue followed by the modded
// versions already installed under dir.
func (c *Client) ListAvailableVersions(ctx context.Context, dir string) ([]Version, error) {
	manifest, err := c.versionManifest(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(manifest.Versions))
	versions := make([]Version, 0, len(manifest.Versions))
	for _, v := range manifest.Versions {
		known[v.ID] = true
		versions = append(versions, Version{ID: v.ID, Type: v.Type})
	}

	entries, err := os.ReadDir(filepath.Join(dir, "versions"))
	if err != nil {
		return versions, nil
	}
	for _, e := range entries {
		if !e.IsDir() || known[e.Name()] || !IsInstalled(dir, e.Name()) {
			continue
		}
		versions = append(versions, Version{ID: e.Name(), Type: "modded"})
	}
	return versions, nil
}

// InstallVersion downloads everything id needs to start: its version json,
// parents, client jar, libraries, natives and assets. Files already present
// with the right checksum are kept.
func (c *Client) InstallVersion(ctx context.Context, id, dir string) error {
	vj, raw, err := c.fetchVersionJSON(ctx, id, dir)
	if err != nil {
		return err
	}
	return c.installVersion(ctx, id, dir, vj, raw)
}

// installVersion downloads the files of vj. A non-nil raw is the version json
// still to be stored; it is written only once every download succeeded, so a
// failed install never looks installed.
func (c *Client) installVersion(ctx context.Context, id, dir string, vj *manifests.VersionJSON, raw []byte) error {
	rootID := id
	if vj.InheritsFrom != "" {
		if err := c.InstallVersion(ctx, vj.InheritsFrom, dir); err != nil {
			return fmt.Errorf("failed to install parent %s: %w", vj.InheritsFrom, err)
		}
		parents, err := chain(dir, vj.InheritsFrom)
		if err != nil {
			return err
		}
		rootID = parents[len(parents)-1].ID
	}

	c.log.Infof("Installing %s into %s", id, dir)

	jobs := []builders.Job{}
	if client, ok := vj.Downloads["client"]; ok && client.URL != "" {
		jobs = append(jobs, builders.Job{
			Name: id + ".jar",
			URL:  client.URL,
			Dest: filepath.Join(versionDir(dir, id), id+".jar"),
			Sha1: client.Sha1,
			Size: client.Size,
		})
	}

	libraries := builders.NewLibrariesBuilder(dir, c.endpoints.Libraries, vj.Libraries, c.env)
	jobs = append(jobs, libraries.Jobs()...)
	jobs = append(jobs, libraries.NativeJobs()...)
	if err := c.pool.Run(ctx, "Downloading libraries", jobs); err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	natives := builders.NewNativesBuilder(libraries, filepath.Join(versionDir(dir, rootID), "natives"))
	if _, err := natives.Extract(); err != nil {
		return err
	}

	if vj.AssetIndex != nil {
		if err := c.installAssets(ctx, vj.AssetIndex, dir); err != nil {
			return err
		}
	}

	if raw != nil {
		return writeVersionJSON(dir, id, raw)
	}
	return nil
}

// fetchVersionJSON prefers the local copy; otherwise it downloads the json
// listed in the version manifest and also returns its raw bytes for storing.
func (c *Client) fetchVersionJSON(ctx context.Context, id, dir string) (*manifests.VersionJSON, []byte, error) {
	if IsInstalled(dir, id) {
		vj, err := readVersionJSON(dir, id)
		return vj, nil, err
	}

	manifest, err := c.versionManifest(ctx)
	if err != nil {
		return nil, nil, err
	}

	var info *manifests.VersionInfo
	for i := range manifest.Versions {
		if manifest.Versions[i].ID == id {
			info = &manifest.Versions[i]
			break
		}
	}
	if info == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}

	data, err := c.getBytes(ctx, info.URL)
	if err != nil {
		return nil, nil, err
	}
	var vj manifests.VersionJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		return nil, nil, fmt.Errorf("failed to decode version json of %s: %w", id, err)
	}
	return &vj, data, nil
}

func (c *Client) installAssets(ctx context.Context, ref *manifests.AssetIndexRef, dir string) error {
	data, err := c.getBytes(ctx, ref.URL)
	if err != nil {
		return err
	}
	var index manifests.AssetsManifest
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to decode asset index %s: %w", ref.ID, err)
	}

	assets := builders.NewAssetBuilder(dir, c.endpoints.Resources, ref.ID, &index)
	if err := assets.WriteIndex(); err != nil {
		return err
	}
	if err := c.pool.Run(ctx, "Downloading assets", assets.Jobs()); err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return assets.Finalize()
}

