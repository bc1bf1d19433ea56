package installer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"limeal.fr/cobalt/pkg/game/installer/builders"
	"limeal.fr/cobalt/pkg/game/installer/manifests"
	"limeal.fr/cobalt/pkg/game/installer/rules"
)

// merged is a version json with its inheritsFrom chain folded in.
type merged struct {
	id         string
	root       string
	jar        string
	mainClass  string
	versionTyp string
	legacyArgs string
	jvm        []any
	game       []any
	assetIndex string
	libraries  []manifests.Library
}

func merge(versions []*manifests.VersionJSON) merged {
	m := merged{id: versions[0].ID}
	root := versions[len(versions)-1]
	m.root = root.ID
	m.jar = root.ID
	if root.Jar != "" {
		m.jar = root.Jar
	}

	seen := map[string]bool{}
	for _, v := range versions {
		if m.mainClass == "" {
			m.mainClass = v.MainClass
		}
		if m.versionTyp == "" {
			m.versionTyp = v.Type
		}
		if m.legacyArgs == "" {
			m.legacyArgs = v.MinecraftArguments
		}
		if m.assetIndex == "" {
			if v.AssetIndex != nil {
				m.assetIndex = v.AssetIndex.ID
			} else {
				m.assetIndex = v.Assets
			}
		}
		// Child libraries win over the parent's copy of the same artifact.
		for _, lib := range v.Libraries {
			if seen[lib.Key()] {
				continue
			}
			seen[lib.Key()] = true
			m.libraries = append(m.libraries, lib)
		}
	}

	// Arguments accumulate from the root down.
	for i := len(versions) - 1; i >= 0; i-- {
		if a := versions[i].Arguments; a != nil {
			m.jvm = append(m.jvm, a.JVM...)
			m.game = append(m.game, a.Game...)
		}
	}
	return m
}

// GetLaunchCommand builds the argv of an installed version. Element 0 is
// "java"; callers substitute their runtime and insert their JVM flags.
func (c *Client) GetLaunchCommand(id, dir string, opts Options) ([]string, error) {
	versions, err := chain(dir, id)
	if err != nil {
		return nil, err
	}
	m := merge(versions)
	if m.mainClass == "" {
		return nil, fmt.Errorf("%s has no main class", id)
	}

	libraries := builders.NewLibrariesBuilder(dir, c.endpoints.Libraries, m.libraries, c.env)
	classpath := []string{}
	for _, lib := range libraries.Allowed() {
		if lib.Natives != nil && (lib.Downloads == nil || lib.Downloads.Artifact == nil) {
			continue
		}
		if path := libraries.Path(lib); path != "" {
			classpath = append(classpath, path)
		}
	}
	classpath = append(classpath, filepath.Join(versionDir(dir, m.jar), m.jar+".jar"))

	placeholders := c.placeholders(m, dir, opts, classpath)
	pairs := make([]string, 0, 2*len(placeholders))
	for key, value := range placeholders {
		pairs = append(pairs, "${"+key+"}", value)
	}
	// One pass: substituted values are never scanned for placeholders again.
	format := strings.NewReplacer(pairs...).Replace

	jvm := c.parseArgs(m.jvm, opts.Features, format)
	if len(m.jvm) == 0 {
		jvm = []string{
			format("-Djava.library.path=${natives_directory}"),
			"-cp",
			format("${classpath}"),
		}
	}

	var game []string
	if len(m.game) > 0 {
		game = c.parseArgs(m.game, opts.Features, format)
	} else {
		for _, arg := range strings.Fields(m.legacyArgs) {
			game = append(game, format(arg))
		}
	}

	argv := make([]string, 0, 2+len(jvm)+len(game))
	argv = append(argv, "java")
	argv = append(argv, jvm...)
	argv = append(argv, m.mainClass)
	argv = append(argv, game...)
	return argv, nil
}

func (c *Client) placeholders(m merged, dir string, opts Options, classpath []string) map[string]string {
	uuid := opts.UUID
	if uuid == "" {
		uuid = OfflineUUID(opts.Username)
	}
	token := opts.Token
	if token == "" {
		token = "0"
	}
	userType := opts.UserType
	if userType == "" {
		userType = "legacy"
	}
	versionType := m.versionTyp
	if versionType == "" {
		versionType = "release"
	}
	assetsRoot := filepath.Join(dir, "assets")

	p := map[string]string{
		"auth_player_name":    opts.Username,
		"version_name":        m.id,
		"game_directory":      dir,
		"assets_root":         assetsRoot,
		"game_assets":         filepath.Join(assetsRoot, "virtual", m.assetIndex),
		"assets_index_name":   m.assetIndex,
		"auth_uuid":           uuid,
		"auth_access_token":   token,
		"auth_session":        token,
		"user_type":           userType,
		"version_type":        versionType,
		"clientid":            "0",
		"auth_xuid":           "0",
		"user_properties":     "{}",
		"launcher_name":       LauncherName,
		"launcher_version":    LauncherVersion,
		"natives_directory":   filepath.Join(versionDir(dir, m.root), "natives"),
		"classpath":           strings.Join(classpath, string(os.PathListSeparator)),
		"classpath_separator": string(os.PathListSeparator),
		"library_directory":   filepath.Join(dir, "libraries"),
		"resolution_width":    "854",
		"resolution_height":   "480",
	}
	for _, f := range opts.Features {
		if f.Flag != "" {
			p[f.Flag] = f.Value
		}
	}
	return p
}

// parseArgs flattens the modern arguments list, keeping rule gated entries
// only when their rules admit the environment and features.
func (c *Client) parseArgs(args []any, features []rules.Feature, format func(string) string) []string {
	out := []string{}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, format(v))
		case map[string]any:
			ruleList := []manifests.Rule{}
			if raw, ok := v["rules"]; ok {
				data, err := json.Marshal(raw)
				if err != nil || json.Unmarshal(data, &ruleList) != nil {
					continue
				}
			}
			if !rules.ShouldInclude(ruleList, c.env, features...) {
				continue
			}
			switch value := v["value"].(type) {
			case string:
				out = append(out, format(value))
			case []any:
				for _, item := range value {
					if s, ok := item.(string); ok {
						out = append(out, format(s))
					}
				}
			}
		}
	}
	return out
}
