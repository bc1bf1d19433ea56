package installer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"

	"limeal.fr/cobalt/pkg/game/installer/manifests"
)

func (c *Client) profileURL(req FabricLikeRequest) (string, error) {
	game := url.PathEscape(req.GameVersion)
	loader := url.PathEscape(req.LoaderVersion)
	switch req.Flavor {
	case FlavorFabric:
		return strings.TrimSuffix(c.endpoints.FabricMeta, "/") + "/v2/versions/loader/" + game + "/" + loader + "/profile/json", nil
	case FlavorQuilt:
		return strings.TrimSuffix(c.endpoints.QuiltMeta, "/") + "/v3/versions/loader/" + game + "/" + loader + "/profile/json", nil
	}
	return "", fmt.Errorf("unsupported fabric-like flavor %q", req.Flavor)
}

// InstallFabricLike installs a Fabric or Quilt loader profile on top of its
// vanilla parent and returns the new version id.
func (c *Client) InstallFabricLike(ctx context.Context, req FabricLikeRequest) (string, error) {
	if req.GameVersion == "" || req.LoaderVersion == "" {
		return "", errors.New("game and loader versions are required")
	}
	profileURL, err := c.profileURL(req)
	if err != nil {
		return "", err
	}

	data, err := c.getBytes(ctx, profileURL)
	if err != nil {
		return "", err
	}
	var profile manifests.VersionJSON
	if err := json.Unmarshal(data, &profile); err != nil {
		return "", fmt.Errorf("failed to decode %s profile: %w", req.Flavor, err)
	}
	if profile.ID == "" {
		return "", fmt.Errorf("%s profile for %s/%s has no id", req.Flavor, req.GameVersion, req.LoaderVersion)
	}
	if profile.InheritsFrom == "" {
		profile.InheritsFrom = req.GameVersion
		if data, err = jsonparser.Set(data, []byte(strconv.Quote(req.GameVersion)), "inheritsFrom"); err != nil {
			return "", fmt.Errorf("failed to patch %s profile: %w", req.Flavor, err)
		}
	}

	if err := c.installVersion(ctx, profile.ID, req.Dir, &profile, data); err != nil {
		return "", err
	}

	c.log.Infof("Installed %s %s for %s as %s", req.Flavor, req.LoaderVersion, req.GameVersion, profile.ID)
	return profile.ID, nil
}
