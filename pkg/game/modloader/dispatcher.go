package modloader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"

	"limeal.fr/cobalt/pkg/config"
	"limeal.fr/cobalt/pkg/game/installer"
	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

type Dispatcher struct {
	Installer installer.Service
	Meta      *resty.Client
	Endpoints config.EndpointSettings
	Chooser   Chooser
	Selected  SelectedVersionStore
	Log       *logging.Logger
}

func NewDispatcher(svc installer.Service, meta *resty.Client, endpoints config.EndpointSettings,
	chooser Chooser, selected SelectedVersionStore, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Default()
	}
	if meta == nil {
		meta = utils.NewMetaClient(3, 0)
	}
	return &Dispatcher{
		Installer: svc,
		Meta:      meta,
		Endpoints: endpoints,
		Chooser:   chooser,
		Selected:  selected,
		Log:       log,
	}
}

// Install resolves the loader build for req, installs it and stores the
// resulting version id as the selected version.
func (d *Dispatcher) Install(ctx context.Context, req Request) (string, error) {
	if req.GameVersion == "" {
		return "", errors.New("game version is required")
	}

	var (
		id  string
		err error
	)
	switch req.Kind {
	case KindForge:
		id, err = d.installForge(ctx, req)
	case KindFabric:
		id, err = d.installFabricLike(ctx, req, installer.FlavorFabric)
	case KindQuilt:
		id, err = d.installFabricLike(ctx, req, installer.FlavorQuilt)
	case KindNeoForge:
		id, err = d.installNeoForge(ctx, req)
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownKind, int(req.Kind))
	}
	if err != nil {
		return "", err
	}

	if d.Selected != nil {
		if err := d.Selected.SetSelectedVersion(id); err != nil {
			return id, fmt.Errorf("installed %s but could not select it: %w", id, err)
		}
	}
	d.Log.Infof("%s installed as %s", req.Kind, id)
	return id, nil
}

func (d *Dispatcher) installForge(ctx context.Context, req Request) (string, error) {
	build := req.LoaderVersion
	if build != "" && !strings.Contains(build, "-") {
		build = req.GameVersion + "-" + build
	}

	if build == "" {
		all, err := d.Installer.ListForgeBuilds(ctx)
		if err != nil {
			return "", normalize(err)
		}
		builds := FilterForgeBuilds(all, req.GameVersion)
		if len(builds) == 0 {
			return "", fmt.Errorf("%w: Forge for %s", ErrLoaderUnavailable, req.GameVersion)
		}
		if d.Chooser == nil {
			return "", fmt.Errorf("%w: no build chooser configured", ErrCancelled)
		}
		choice, err := d.Chooser.Choose(ctx, KindForge, builds)
		if err != nil {
			return "", err
		}
		if choice == "" {
			return "", ErrCancelled
		}
		build = choice
	}

	id, err := d.Installer.InstallForgeLike(ctx, installer.ForgeLikeRequest{
		Flavor: installer.FlavorForge,
		Build:  build,
		Dir:    req.Dir,
		Java:   req.Java,
	})
	if err != nil {
		return "", normalize(err)
	}
	return id, nil
}

func (d *Dispatcher) installFabricLike(ctx context.Context, req Request, flavor installer.Flavor) (string, error) {
	loader := req.LoaderVersion
	if loader == "" {
		var err error
		if flavor == installer.FlavorQuilt {
			loader, err = d.latestQuiltLoader(ctx, req.GameVersion)
		} else {
			loader, err = d.latestFabricLoader(ctx, req.GameVersion)
		}
		if err != nil {
			return "", err
		}
	}

	id, err := d.Installer.InstallFabricLike(ctx, installer.FabricLikeRequest{
		Flavor:        flavor,
		GameVersion:   req.GameVersion,
		LoaderVersion: loader,
		Dir:           req.Dir,
	})
	if err != nil {
		return "", normalize(err)
	}
	return id, nil
}

func (d *Dispatcher) installNeoForge(ctx context.Context, req Request) (string, error) {
	build := req.LoaderVersion
	if build == "" {
		var err error
		if build, err = d.latestNeoForge(ctx, req.GameVersion); err != nil {
			return "", err
		}
	}

	id, err := d.Installer.InstallForgeLike(ctx, installer.ForgeLikeRequest{
		Flavor: installer.FlavorNeoForge,
		Build:  build,
		Dir:    req.Dir,
		Java:   req.Java,
	})
	if err != nil {
		return "", normalize(err)
	}
	return id, nil
}

func (d *Dispatcher) fetch(ctx context.Context, rawURL string) (gjson.Result, error) {
	data, err := utils.GetBytes(ctx, d.Meta, rawURL)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: malformed metadata from %s", ErrLoaderUnavailable, rawURL)
	}
	return gjson.ParseBytes(data), nil
}

// latestFabricLoader returns the first stable loader listed for the game
// version, or the first one when none is flagged stable.
func (d *Dispatcher) latestFabricLoader(ctx context.Context, game string) (string, error) {
	res, err := d.fetch(ctx, strings.TrimSuffix(d.Endpoints.FabricMeta, "/")+"/v2/versions/loader/"+url.PathEscape(game))
	if err != nil {
		return "", err
	}

	first := ""
	for _, entry := range res.Array() {
		version := entry.Get("loader.version").String()
		if version == "" {
			continue
		}
		if entry.Get("loader.stable").Bool() {
			return version, nil
		}
		if first == "" {
			first = version
		}
	}
	if first == "" {
		return "", fmt.Errorf("%w: Fabric for %s", ErrLoaderUnavailable, game)
	}
	return first, nil
}

func (d *Dispatcher) latestQuiltLoader(ctx context.Context, game string) (string, error) {
	res, err := d.fetch(ctx, strings.TrimSuffix(d.Endpoints.QuiltMeta, "/")+"/v3/versions/loader/"+url.PathEscape(game))
	if err != nil {
		return "", err
	}
	for _, entry := range res.Array() {
		if version := entry.Get("loader.version").String(); version != "" {
			return version, nil
		}
	}
	return "", fmt.Errorf("%w: Quilt for %s", ErrLoaderUnavailable, game)
}

func (d *Dispatcher) latestNeoForge(ctx context.Context, game string) (string, error) {
	res, err := d.fetch(ctx, strings.TrimSuffix(d.Endpoints.NeoForgeMaven, "/")+"/api/maven/versions/releases/net/neoforged/neoforge")
	if err != nil {
		return "", err
	}
	versions := res.Get("versions")
	if !versions.IsArray() {
		return "", fmt.Errorf("%w: NeoForge version list is missing", ErrLoaderUnavailable)
	}

	var all []string
	for _, v := range versions.Array() {
		all = append(all, v.String())
	}
	matches := FilterNeoForgeBuilds(all, game)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: NeoForge for %s", ErrLoaderUnavailable, game)
	}
	// Plain string order, not version order: "20.4.99" wins over "20.4.237".
	// The pick stays lexicographic on purpose.
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// FilterForgeBuilds keeps the builds made for game and orders them newest first.
func FilterForgeBuilds(builds []string, game string) []string {
	var out []string
	for _, b := range builds {
		if strings.HasPrefix(b, game+"-") {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return compareBuilds(forgePart(out[i]), forgePart(out[j])) > 0
	})
	return out
}

// FilterNeoForgeBuilds keeps the NeoForge releases made for game. NeoForge
// drops the leading "1." of the game version, so 1.20.4 maps to 20.4.x and
// 1.21 to 21.0.x.
func FilterNeoForgeBuilds(builds []string, game string) []string {
	prefix := neoForgePrefix(game)
	var out []string
	for _, b := range builds {
		if strings.Contains(b, game) || (prefix != "" && strings.HasPrefix(b, prefix)) {
			out = append(out, b)
		}
	}
	return out
}

func neoForgePrefix(game string) string {
	rest, ok := strings.CutPrefix(game, "1.")
	if !ok || rest == "" {
		return ""
	}
	if !strings.Contains(rest, ".") {
		rest += ".0"
	}
	return rest + "."
}

func forgePart(build string) string {
	if _, after, ok := strings.Cut(build, "-"); ok {
		return after
	}
	return build
}

// compareBuilds orders loader builds by semver when both parse, else by their
// dot separated numeric fields.
func compareBuilds(a, b string) int {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}

	fa := strings.FieldsFunc(a, isSeparator)
	fb := strings.FieldsFunc(b, isSeparator)
	for i := 0; i < len(fa) && i < len(fb); i++ {
		na, errA := strconv.Atoi(fa[i])
		nb, errB := strconv.Atoi(fb[i])
		if errA != nil || errB != nil {
			if c := strings.Compare(fa[i], fb[i]); c != 0 {
				return c
			}
			continue
		}
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(fa) < len(fb):
		return -1
	case len(fa) > len(fb):
		return 1
	}
	return 0
}

func isSeparator(r rune) bool {
	return r == '.' || r == '-'
}

// normalize maps installer service failures onto the dispatcher's errors.
func normalize(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	case errors.Is(err, installer.ErrNetwork):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	default:
		return fmt.Errorf("%w: %w", ErrInstaller, err)
	}
}
