package manifests

import "strings"

/////////////////////////////////////////////////////////////////////
// Version manifest (piston-meta)
/////////////////////////////////////////////////////////////////////

type MCManifest struct {
	Latest   LatestVersions `json:"latest"`
	Versions []VersionInfo  `json:"versions"`
}

type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type VersionInfo struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Type string `json:"type"` // release, snapshot, old_beta, old_alpha
}

/////////////////////////////////////////////////////////////////////
// Version json: versions/<id>/<id>.json
// Vanilla, Fabric/Quilt profiles and Forge/NeoForge installers all write this shape.
/////////////////////////////////////////////////////////////////////

type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

type Arguments struct {
	Game []any `json:"game"` // string or {rules, value}
	JVM  []any `json:"jvm"`  // string or {rules, value}
}

type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

type DownloadEntry struct {
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

type VersionJSON struct {
	ID                 string                   `json:"id"`
	InheritsFrom       string                   `json:"inheritsFrom,omitempty"`
	Jar                string                   `json:"jar,omitempty"`
	Type               string                   `json:"type,omitempty"`
	MainClass          string                   `json:"mainClass"`
	MinecraftArguments string                   `json:"minecraftArguments,omitempty"`
	Arguments          *Arguments               `json:"arguments,omitempty"`
	AssetIndex         *AssetIndexRef           `json:"assetIndex,omitempty"`
	Assets             string                   `json:"assets,omitempty"`
	Downloads          map[string]DownloadEntry `json:"downloads,omitempty"`
	Libraries          []Library                `json:"libraries"`
	JavaVersion        *JavaVersion             `json:"javaVersion,omitempty"`
}

type Artifact struct {
	Path string `json:"path"`
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type LibraryDownloads struct {
	Artifact    *Artifact            `json:"artifact,omitempty"`
	Classifiers map[string]*Artifact `json:"classifiers,omitempty"`
}

type Extract struct {
	Exclude []string `json:"exclude,omitempty"`
}

// Library covers both Mojang style entries (downloads) and maven style
// entries (name + repository url) used by Fabric and Quilt profiles.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Sha1      string            `json:"sha1,omitempty"`
	Size      int64             `json:"size,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Extract   *Extract          `json:"extract,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
}

// Key identifies a library independent of its version (group:artifact[:classifier]).
func (l Library) Key() string {
	parts := strings.Split(l.Name, ":")
	if len(parts) < 3 {
		return l.Name
	}
	key := parts[0] + ":" + parts[1]
	if len(parts) > 3 {
		key += ":" + parts[3]
	}
	return key
}

/////////////////////////////////////////////////////////////////////
// AssetsManifest
/////////////////////////////////////////////////////////////////////

type AssetsManifest struct {
	Objects        map[string]AssetObject `json:"objects"`
	Virtual        bool                   `json:"virtual,omitempty"`
	MapToResources bool                   `json:"map_to_resources,omitempty"`
}

type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
