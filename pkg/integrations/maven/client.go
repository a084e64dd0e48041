package maven

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/integrations"
)

// CentralURL is the base URL of Maven Central.
const CentralURL = "https://repo1.maven.org/maven2"

// Client reads POMs and metadata from one Maven repository.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the repository at baseURL (Maven Central
// when empty). Responses are cached in c for ttl.
func NewClient(c cache.Cache, baseURL string, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = CentralURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		Client:  integrations.NewClient(c, "maven:"+baseURL, ttl, nil),
		baseURL: baseURL,
	}
}

// BaseURL returns the repository root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// WithHTTP swaps the shared client, keeping the base URL. It is used to
// inject test servers and retry policies.
func (c *Client) WithHTTP(ic *integrations.Client) *Client {
	return &Client{Client: ic, baseURL: c.baseURL}
}

// VersionDir returns the repository-relative directory of a version:
// group/path/artifactId/version.
func VersionDir(groupID, artifactID, version string) string {
	return strings.ReplaceAll(groupID, ".", "/") + "/" + artifactID + "/" + version
}

// POMPath returns the repository-relative path of the POM for c.
// The POM is shared by every classifier and type of a version.
func POMPath(c artifact.Coordinate) string {
	return VersionDir(c.GroupID, c.ArtifactID, c.Version) + "/" + c.ArtifactID + "-" + c.Version + ".pom"
}

// ArtifactPath returns the repository-relative path of the file for c.
func ArtifactPath(c artifact.Coordinate) string {
	return VersionDir(c.GroupID, c.ArtifactID, c.Version) + "/" + c.FileName()
}

// FetchPOM downloads the POM of c. A missing POM yields an error wrapping
// [integrations.ErrNotFound].
func (c *Client) FetchPOM(ctx context.Context, coord artifact.Coordinate, refresh bool) ([]byte, error) {
	path := POMPath(coord)
	data, err := c.CachedBytes(ctx, path, refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, c.baseURL+"/"+path)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: pom %s", err, coord)
		}
		return nil, err
	}
	return data, nil
}

// HasArtifact reports whether the file for coord's classifier and type is
// present in the repository.
func (c *Client) HasArtifact(ctx context.Context, coord artifact.Coordinate) (bool, error) {
	path := ArtifactPath(coord)
	data, err := c.CachedBytes(ctx, "head:"+path, false, func() ([]byte, error) {
		ok, err := c.Exists(ctx, c.baseURL+"/"+path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, integrations.ErrNotFound
		}
		return []byte("1"), nil
	})
	if errors.Is(err, integrations.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(data) > 0, nil
}

// LatestVersion returns the newest release of groupId:artifactId according
// to the repository's maven-metadata.xml. It prefers <release>, then
// <latest>, then the last listed version.
func (c *Client) LatestVersion(ctx context.Context, groupID, artifactID string, refresh bool) (string, error) {
	path := strings.ReplaceAll(groupID, ".", "/") + "/" + artifactID + "/maven-metadata.xml"
	data, err := c.CachedBytes(ctx, path, refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, c.baseURL+"/"+path)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
		}
		return "", err
	}

	var md metadata
	if err := xml.Unmarshal(data, &md); err != nil {
		return "", fmt.Errorf("parse maven-metadata.xml for %s:%s: %w", groupID, artifactID, err)
	}
	switch v := md.Versioning; {
	case v.Release != "":
		return v.Release, nil
	case v.Latest != "":
		return v.Latest, nil
	case len(v.Versions) > 0:
		return v.Versions[len(v.Versions)-1], nil
	}
	return "", fmt.Errorf("%w: no versions for %s:%s", integrations.ErrNotFound, groupID, artifactID)
}

type metadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}
