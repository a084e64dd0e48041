package maven

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/integrations"
)

const libPOM = `<?xml version="1.0"?>
<project>
  <groupId>org.example</groupId>
  <artifactId>mylib</artifactId>
  <version>1.0.0</version>
</project>`

const libMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.example</groupId>
  <artifactId>mylib</artifactId>
  <versioning>
    <latest>1.1.0-SNAPSHOT</latest>
    <release>1.0.0</release>
    <versions>
      <version>0.9.0</version>
      <version>1.0.0</version>
    </versions>
  </versioning>
</metadata>`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	mc := NewClient(c, server.URL+"/maven2/", time.Hour)
	return mc.WithHTTP(mc.Client.WithHTTPClient(server.Client()).WithRetry(1, time.Millisecond))
}

func TestPaths(t *testing.T) {
	tests := []struct {
		coord    string
		pom      string
		artifact string
	}{
		{
			"org.example:mylib:1.0.0",
			"org/example/mylib/1.0.0/mylib-1.0.0.pom",
			"org/example/mylib/1.0.0/mylib-1.0.0.jar",
		},
		{
			"org.example:mylib:test-jar:tests:1.0.0",
			"org/example/mylib/1.0.0/mylib-1.0.0.pom",
			"org/example/mylib/1.0.0/mylib-1.0.0-tests.test-jar",
		},
		{
			"junit:junit:4.13",
			"junit/junit/4.13/junit-4.13.pom",
			"junit/junit/4.13/junit-4.13.jar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			c := artifact.MustParseCoordinate(tt.coord)
			if got := POMPath(c); got != tt.pom {
				t.Errorf("POMPath = %s, want %s", got, tt.pom)
			}
			if got := ArtifactPath(c); got != tt.artifact {
				t.Errorf("ArtifactPath = %s, want %s", got, tt.artifact)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	if got := NewClient(nil, "", time.Hour).BaseURL(); got != CentralURL {
		t.Errorf("BaseURL = %s, want %s", got, CentralURL)
	}
	if got := NewClient(nil, "https://repo.example/m2/", time.Hour).BaseURL(); got != "https://repo.example/m2" {
		t.Errorf("BaseURL = %s", got)
	}
}

func TestFetchPOM(t *testing.T) {
	hits := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/maven2/org/example/mylib/1.0.0/mylib-1.0.0.pom" {
			hits++
			w.Write([]byte(libPOM))
			return
		}
		http.NotFound(w, r)
	}))
	ctx := context.Background()
	coord := artifact.MustParseCoordinate("org.example:mylib:1.0.0")

	for range 2 {
		data, err := c.FetchPOM(ctx, coord, false)
		if err != nil {
			t.Fatalf("FetchPOM: %v", err)
		}
		if string(data) != libPOM {
			t.Errorf("FetchPOM body = %q", data)
		}
	}
	if hits != 1 {
		t.Errorf("second fetch should be cached, hits = %d", hits)
	}

	_, err := c.FetchPOM(ctx, artifact.MustParseCoordinate("org.example:missing:1.0.0"), false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("missing POM error = %v", err)
	}
}

func TestHasArtifact(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if r.URL.Path == "/maven2/org/example/mylib/1.0.0/mylib-1.0.0-client.jar" {
			return
		}
		http.NotFound(w, r)
	}))
	ctx := context.Background()

	ok, err := c.HasArtifact(ctx, artifact.MustParseCoordinate("org.example:mylib:jar:client:1.0.0"))
	if err != nil || !ok {
		t.Errorf("client jar: ok=%v err=%v", ok, err)
	}
	ok, err = c.HasArtifact(ctx, artifact.MustParseCoordinate("org.example:mylib:jar:sources:1.0.0"))
	if err != nil || ok {
		t.Errorf("sources jar: ok=%v err=%v", ok, err)
	}
}

func TestLatestVersion(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/maven2/org/example/mylib/maven-metadata.xml":
			w.Write([]byte(libMetadata))
		case "/maven2/org/example/bare/maven-metadata.xml":
			w.Write([]byte(`<metadata><versioning><versions><version>1</version><version>2</version></versions></versioning></metadata>`))
		case "/maven2/org/example/empty/maven-metadata.xml":
			w.Write([]byte(`<metadata/>`))
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	tests := []struct {
		artifactID string
		want       string
		wantErr    error
	}{
		{"mylib", "1.0.0", nil},
		{"bare", "2", nil},
		{"empty", "", integrations.ErrNotFound},
		{"missing", "", integrations.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.artifactID, func(t *testing.T) {
			got, err := c.LatestVersion(ctx, "org.example", tt.artifactID, false)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LatestVersion = %q, want %q", got, tt.want)
			}
		})
	}
}
