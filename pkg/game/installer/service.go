// Package installer downloads Minecraft versions and mod loaders into a game
// directory and builds the command line that starts them.
package installer

import (
	"context"
	"crypto/md5"
	"errors"
	"strings"

	"github.com/google/uuid"

	"limeal.fr/cobalt/pkg/game/installer/rules"
)

var (
	ErrNetwork         = errors.New("network error")
	ErrVersionNotFound = errors.New("version not found")
	ErrInstallerFailed = errors.New("installer failed")
)

// Flavor selects the loader family of a Fabric-like or Forge-like install.
type Flavor string

const (
	FlavorFabric   Flavor = "fabric"
	FlavorQuilt    Flavor = "quilt"
	FlavorForge    Flavor = "forge"
	FlavorNeoForge Flavor = "neoforge"
)

// Version is an entry of the version list.
type Version struct {
	ID   string
	Type string // release, snapshot, old_beta, old_alpha, modded
}

// Options carries the player identity substituted into the game arguments.
type Options struct {
	Username string
	UUID     string // empty: offline uuid derived from Username
	Token    string // empty: "0"
	UserType string // empty: legacy
	Features []rules.Feature
}

type FabricLikeRequest struct {
	Flavor        Flavor
	GameVersion   string
	LoaderVersion string
	Dir           string
}

type ForgeLikeRequest struct {
	Flavor       Flavor
	Build        string // 1.20.1-47.2.0 for Forge, 20.4.237 for NeoForge
	InstallerURL string // optional, derived from Flavor and Build when empty
	Dir          string
	Java         string // java executable used to run the installer
}

type Service interface {
	ListAvailableVersions(ctx context.Context, dir string) ([]Version, error)
	InstallVersion(ctx context.Context, id, dir string) error
	InstallFabricLike(ctx context.Context, req FabricLikeRequest) (string, error)
	InstallForgeLike(ctx context.Context, req ForgeLikeRequest) (string, error)
	ListForgeBuilds(ctx context.Context) ([]string, error)
	GetLaunchCommand(id, dir string, opts Options) ([]string, error)
}

var _ Service = (*Client)(nil)

// OfflineUUID is the uuid servers derive for an unauthenticated player name,
// without dashes.
func OfflineUUID(name string) string {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(sum[:])
	return strings.ReplaceAll(id.String(), "-", "")
}

// NeoForgeGameVersion maps a NeoForge build (20.4.237) to the game version it
// targets (1.20.4). 21.0.x targets 1.21.
func NeoForgeGameVersion(build string) (string, bool) {
	parts := strings.SplitN(build, ".", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	for _, p := range parts[:2] {
		for _, r := range p {
			if r < '0' || r > '9' {
				return "", false
			}
		}
	}
	if parts[1] == "0" {
		return "1." + parts[0], true
	}
	return "1." + parts[0] + "." + parts[1], true
}

// ForgeGameVersion extracts 1.20.1 out of the Forge build 1.20.1-47.2.0.
func ForgeGameVersion(build string) (string, bool) {
	game, _, ok := strings.Cut(build, "-")
	return game, ok && game != ""
}
