package builders

import (
	"fmt"
	"os"
	"path/filepath"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/utils"
)

type NativesBuilder struct {
	Libraries *LibrariesBuilder
	Dir       string // versions/<id>/natives
}

func NewNativesBuilder(libraries *LibrariesBuilder, dir string) *NativesBuilder {
	return &NativesBuilder{Libraries: libraries, Dir: dir}
}

func (n *NativesBuilder) GetFolderPath() string {
	return n.Dir
}

// Extract unpacks every natives jar into the natives directory and returns the
// number of files written.
func (n *NativesBuilder) Extract() (int, error) {
	if err := os.MkdirAll(n.Dir, 0o755); err != nil {
		return 0, err
	}

	total := 0
	for _, lib := range n.Libraries.Allowed() {
		jar := n.jarFor(lib)
		if jar == "" {
			continue
		}
		if _, err := os.Stat(jar); err != nil {
			continue
		}

		exclude := []string{"META-INF/"}
		if lib.Extract != nil && len(lib.Extract.Exclude) > 0 {
			exclude = lib.Extract.Exclude
		}
		count, err := utils.ExtractNatives(jar, n.Dir, exclude)
		if err != nil {
			return total, fmt.Errorf("failed to extract natives of %s: %w", lib.Name, err)
		}
		total += count
	}
	return total, nil
}

func (n *NativesBuilder) jarFor(lib manifests.Library) string {
	if art, ok := rules.NativeArtifact(lib, n.Libraries.Env); ok {
		return filepath.Join(n.Libraries.GetFolderPath(), filepath.FromSlash(art.Path))
	}
	if IsNativesJar(lib) {
		return n.Libraries.Path(lib)
	}
	return ""
}
