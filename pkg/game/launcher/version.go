package launcher

import (
	"regexp"
	"strconv"
	"strings"

	"limeal.fr/cobalt/pkg/game/installer"
)

var (
	gameVersionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)
	fabricLikeRe  = regexp.MustCompile(`^(?:fabric|quilt)-loader-(.+?)-(\d+\.\d+.*)$`)
)

// BaseGameVersion reduces a composite modded id to the game version it runs:
//
//	fabric-loader-0.15.11-1.20.1 -> 1.20.1
//	1.20.1-forge-47.2.0          -> 1.20.1
//	neoforge-20.4.237            -> 1.20.4
//
// Plain ids are returned unchanged.
func BaseGameVersion(id string) string {
	if m := fabricLikeRe.FindStringSubmatch(id); m != nil {
		return m[2]
	}
	if i := strings.Index(strings.ToLower(id), "-forge"); i > 0 {
		return id[:i]
	}
	if build, ok := strings.CutPrefix(strings.ToLower(id), "neoforge-"); ok {
		if game, ok := installer.NeoForgeGameVersion(build); ok {
			return game
		}
	}
	return id
}

// RequiredJavaMajor maps a game version to the minimum Java major it needs.
// Only major.minor.patch shaped ids are known; ok is false otherwise.
//
//	minor >= 17      -> 17
//	12 <= minor < 17 -> 11
//	minor < 12       -> 8
func RequiredJavaMajor(id string) (int, bool) {
	m := gameVersionRe.FindStringSubmatch(BaseGameVersion(id))
	if m == nil {
		return 0, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	switch {
	case minor >= 17:
		return 17, true
	case minor >= 12:
		return 11, true
	default:
		return 8, true
	}
}

// MajorOf returns the Java major of a version string, treating the legacy
// 1.x scheme as x ("1.8.0_392" -> 8, "17.0.10" -> 17). Zero means unknown.
func MajorOf(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if strings.HasPrefix(v, "1.") {
		parts := strings.SplitN(v, ".", 3)
		return atoi(parts[1])
	}
	parts := strings.SplitN(v, ".", 2)
	return atoi(parts[0])
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
