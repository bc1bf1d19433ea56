package builders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
	"limeal.fr/cobalt/pkg/utils"
)

type AssetBuilder struct {
	GameDir       string
	ResourcesBase string
	IndexID       string
	Manifest      *manifests.AssetsManifest
}

func NewAssetBuilder(gameDir, resourcesBase, indexID string, manifest *manifests.AssetsManifest) *AssetBuilder {
	return &AssetBuilder{
		GameDir:       gameDir,
		ResourcesBase: strings.TrimSuffix(resourcesBase, "/"),
		IndexID:       indexID,
		Manifest:      manifest,
	}
}

func (a *AssetBuilder) GetFolderPath() string {
	return filepath.Join(a.GameDir, "assets")
}

func (a *AssetBuilder) GetAssetsIndexPath() string {
	return filepath.Join(a.GetFolderPath(), "indexes", a.IndexID+".json")
}

func (a *AssetBuilder) objectPath(hash string) string {
	return filepath.Join(a.GetFolderPath(), "objects", hash[:2], hash)
}

// WriteIndex stores the asset index the game reads at startup.
func (a *AssetBuilder) WriteIndex() error {
	data, err := json.Marshal(a.Manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal assets manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(a.GetAssetsIndexPath()), 0o755); err != nil {
		return err
	}
	return utils.WriteFileAtomic(a.GetAssetsIndexPath(), data, 0o644)
}

// Jobs lists every object of the index; the pool skips those already present.
func (a *AssetBuilder) Jobs() []Job {
	jobs := make([]Job, 0, len(a.Manifest.Objects))
	for name, obj := range a.Manifest.Objects {
		if len(obj.Hash) < 2 {
			continue
		}
		jobs = append(jobs, Job{
			Name: name,
			URL:  a.ResourcesBase + "/" + obj.Hash[:2] + "/" + obj.Hash,
			Dest: a.objectPath(obj.Hash),
			Sha1: obj.Hash,
			Size: obj.Size,
		})
	}
	return jobs
}

// Finalize lays out copies by name for legacy indexes: assets/virtual/<id>
// for virtual ones and <game>/resources for map_to_resources ones.
func (a *AssetBuilder) Finalize() error {
	var root string
	switch {
	case a.Manifest.MapToResources:
		root = filepath.Join(a.GameDir, "resources")
	case a.Manifest.Virtual:
		root = a.VirtualDir()
	default:
		return nil
	}

	for name, obj := range a.Manifest.Objects {
		dest := filepath.Join(root, filepath.FromSlash(name))
		if utils.FileSHA1(dest) == obj.Hash {
			continue
		}
		if err := utils.CopyFile(a.objectPath(obj.Hash), dest); err != nil {
			return fmt.Errorf("failed to copy asset %s: %w", name, err)
		}
	}
	return nil
}

// VirtualDir is ${game_assets} for legacy versions.
func (a *AssetBuilder) VirtualDir() string {
	return filepath.Join(a.GetFolderPath(), "virtual", a.IndexID)
}
