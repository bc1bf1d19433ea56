package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings is launcher.toml: application level knobs that are not user
// preferences of the game (those live in config.json).
type Settings struct {
	Log       LogSettings      `toml:"log"`
	Network   NetworkSettings  `toml:"network"`
	Endpoints EndpointSettings `toml:"endpoints"`
	Meta      SettingsMetadata `toml:"-"`
}

type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type NetworkSettings struct {
	MetaRetries     int `toml:"meta_retries"`
	DownloadRetries int `toml:"download_retries"`
	TimeoutSeconds  int `toml:"timeout_seconds"`
}

type EndpointSettings struct {
	VersionManifest string `toml:"version_manifest"`
	Resources       string `toml:"resources"`
	Libraries       string `toml:"libraries"`
	FabricMeta      string `toml:"fabric_meta"`
	QuiltMeta       string `toml:"quilt_meta"`
	ForgeMaven      string `toml:"forge_maven"`
	NeoForgeMaven   string `toml:"neoforge_maven"`
	Temurin         string `toml:"temurin"`
	ElyAuth         string `toml:"ely_auth"`
}

type SettingsMetadata struct {
	Path string
}

func DefaultSettings() *Settings {
	return &Settings{
		Log: LogSettings{Level: "info"},
		Network: NetworkSettings{
			MetaRetries:     3,
			DownloadRetries: 4,
			TimeoutSeconds:  30,
		},
		Endpoints: EndpointSettings{
			VersionManifest: "https://piston-meta.mojang.com/mc/game/version_manifest.json",
			Resources:       "https://resources.download.minecraft.net",
			Libraries:       "https://libraries.minecraft.net",
			FabricMeta:      "https://meta.fabricmc.net",
			QuiltMeta:       "https://meta.quiltmc.org",
			ForgeMaven:      "https://maven.minecraftforge.net",
			NeoForgeMaven:   "https://maven.neoforged.net",
			Temurin:         "https://github.com/adoptium/temurin",
			ElyAuth:         "https://authserver.ely.by",
		},
	}
}

// Timeout is the metadata request timeout.
func (s *Settings) Timeout() time.Duration {
	if s.Network.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Network.TimeoutSeconds) * time.Second
}

// LoadOrCreateSettings reads launcher.toml, writing the defaults first when
// the file does not exist. Empty values in the file keep their defaults.
func LoadOrCreateSettings(path string) (*Settings, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	s := DefaultSettings()
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if err := s.Save(path); err != nil {
			return nil, err
		}
		s.Meta.Path = path
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	s.fillDefaults()
	s.Meta.Path = path
	return s, nil
}

func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}
	e, de := &s.Endpoints, d.Endpoints
	for _, pair := range []struct {
		value *string
		def   string
	}{
		{&e.VersionManifest, de.VersionManifest},
		{&e.Resources, de.Resources},
		{&e.Libraries, de.Libraries},
		{&e.FabricMeta, de.FabricMeta},
		{&e.QuiltMeta, de.QuiltMeta},
		{&e.ForgeMaven, de.ForgeMaven},
		{&e.NeoForgeMaven, de.NeoForgeMaven},
		{&e.Temurin, de.Temurin},
		{&e.ElyAuth, de.ElyAuth},
	} {
		if *pair.value == "" {
			*pair.value = pair.def
		}
	}
}

func (s *Settings) Save(path string) error {
	content, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
