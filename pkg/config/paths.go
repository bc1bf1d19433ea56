package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DataDirName is the launcher data directory created in the user's home.
const DataDirName = ".cobalt_launcher_nano_files"

// HomeEnv overrides the data directory. Per-version game directories are then
// created inside it instead of the home directory.
const HomeEnv = "COBALT_HOME"

// Paths is the on-disk layout of the launcher.
type Paths struct {
	Root string // data directory
	Home string // parent of per-version game directories
}

func DefaultPaths() (Paths, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return Paths{}, err
		}
		return Paths{Root: abs, Home: abs}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return Paths{Root: filepath.Join(home, DataDirName), Home: home}, nil
}

func (p Paths) ConfigFile() string { return filepath.Join(p.Root, "config.json") }
func (p Paths) SettingsFile() string { return filepath.Join(p.Root, "launcher.toml") }
func (p Paths) AccountsFile() string { return filepath.Join(p.Root, "launcher_profiles.json") }
func (p Paths) AccountsSeqFile() string { return filepath.Join(p.Root, "accounts.seq") }
func (p Paths) NotesFile() string { return filepath.Join(p.Root, "notes.txt") }
func (p Paths) JavaDir() string { return filepath.Join(p.Root, "java") }
func (p Paths) SharedGameDir() string {
	return filepath.Join(p.Root, "minecraft")
}

// JavaInstallDir is the managed directory of a provisioned Java major version.
func (p Paths) JavaInstallDir(major int) string {
	return filepath.Join(p.JavaDir(), "java_"+strconv.Itoa(major))
}

// GameDir returns the directory a version is installed to and run from.
func (p Paths) GameDir(version string, separate bool) string {
	if separate && version != "" {
		return filepath.Join(p.Home, ".minecraft_"+version)
	}
	return p.SharedGameDir()
}

// Desktop is where backups, copied logs and crash reports are written.
func (p Paths) Desktop() string {
	desktop := filepath.Join(p.Home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return p.Home
}

// Ensure creates the data, java and shared game directories.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Root, p.JavaDir(), p.SharedGameDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
