package artifact

import (
	"errors"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		input   string
		want    Coordinate
		wantErr bool
	}{
		{"org.acme:common:1", Coordinate{GroupID: "org.acme", ArtifactID: "common", Type: "jar", Version: "1"}, false},
		{"org.acme:common:txt:1", Coordinate{GroupID: "org.acme", ArtifactID: "common", Type: "txt", Version: "1"}, false},
		{"org.acme:common:txt:client:2", Coordinate{GroupID: "org.acme", ArtifactID: "common", Type: "txt", Classifier: "client", Version: "2"}, false},
		{" org.acme:common:1 ", Coordinate{GroupID: "org.acme", ArtifactID: "common", Type: "jar", Version: "1"}, false},
		{"org.acme:common", Coordinate{}, true},
		{"org.acme::1", Coordinate{}, true},
		{"a:b:c:d:e:f", Coordinate{}, true},
		{"", Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("error %v should wrap ErrInvalidCoordinate", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoordinate_StringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"org.acme:common:1",
		"org.acme:common:txt:1",
		"org.acme:common:txt:client:2",
		"org.acme:common:jar:tests:2",
	} {
		c := MustParseCoordinate(s)
		if got := c.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestCoordinate_FileName(t *testing.T) {
	tests := []struct {
		coord Coordinate
		want  string
	}{
		{NewCoordinate("g", "common", "1"), "common-1.jar"},
		{NewCoordinate("g", "common", "2").WithClassifier("client").WithType("txt"), "common-2-client.txt"},
		{NewCoordinate("g", "common", "3").WithType("doc"), "common-3.doc"},
	}
	for _, tt := range tests {
		if got := tt.coord.FileName(); got != tt.want {
			t.Errorf("FileName() = %q, want %q", got, tt.want)
		}
	}
}

func TestCoordinate_Validate(t *testing.T) {
	if err := NewCoordinate("g", "a", "1").Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	// classifier may be empty but type may not
	bad := []Coordinate{
		{GroupID: "g", Type: "jar", Version: "1"},
		{GroupID: "g", ArtifactID: "a", Type: "jar"},
		{GroupID: "g", ArtifactID: "a", Version: "1"},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidCoordinate", c, err)
		}
	}
}

func TestCoordinate_Key(t *testing.T) {
	base := NewCoordinate("g", "common", "1")

	if base.Key() != base.WithVersion("2").Key() {
		t.Error("versions must not affect the key")
	}
	if base.Key() == base.WithClassifier("client").Key() {
		t.Error("classifier must be part of the key")
	}
	if base.Key() == base.WithType("doc").Key() {
		t.Error("type must be part of the key")
	}

	untyped := Coordinate{GroupID: "g", ArtifactID: "common", Version: "1"}
	if untyped.Key() != base.Key() {
		t.Error("empty type should key like the default type")
	}
	if got := base.Key().String(); got != "g:common::jar" {
		t.Errorf("Key().String() = %q", got)
	}
}
