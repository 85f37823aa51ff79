package pausedapply

import (
	"testing"

	"github.com/edelwud/jin/internal/compose"
	"github.com/edelwud/jin/internal/layer"
)

func TestWriteMarkerParseMarkerRoundTrip(t *testing.T) {
	contribs := []compose.Contribution{
		{Layer: layer.New(layer.GlobalBase), Bytes: []byte("base: true\n")},
		{Layer: layer.NewProject("proj"), Bytes: []byte("project: true\n")},
	}

	marker := WriteMarker(contribs)
	parsed, err := ParseMarker(marker)
	if err != nil {
		t.Fatalf("ParseMarker: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("got %d contributions, want 2", len(parsed))
	}
	if parsed[0].Layer != contribs[0].Layer.String() || parsed[0].Text != "base: true" {
		t.Errorf("contribution 0 = %+v", parsed[0])
	}
	if parsed[1].Layer != contribs[1].Layer.String() || parsed[1].Text != "project: true" {
		t.Errorf("contribution 1 = %+v", parsed[1])
	}
}

func TestWriteMarkerParseMarkerRoundTripThreeLayers(t *testing.T) {
	contribs := []compose.Contribution{
		{Layer: layer.New(layer.GlobalBase), Bytes: []byte("a\n")},
		{Layer: layer.NewScope("backend"), Bytes: []byte("b\n")},
		{Layer: layer.NewProject("proj"), Bytes: []byte("c\n")},
	}

	parsed, err := ParseMarker(WriteMarker(contribs))
	if err != nil {
		t.Fatalf("ParseMarker: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("got %d contributions, want 3", len(parsed))
	}
	texts := []string{parsed[0].Text, parsed[1].Text, parsed[2].Text}
	want := []string{"a", "b", "c"}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("contribution %d text = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestParseMarkerRejectsNonMarkerContent(t *testing.T) {
	if _, err := ParseMarker([]byte("not a marker file\n")); err == nil {
		t.Error("expected error for content missing the marker header")
	}
}

func TestParseMarkerRejectsTruncatedMarker(t *testing.T) {
	data := []byte(MarkerHeader + "\n<<<<<<< global\nx\n")
	if _, err := ParseMarker(data); err == nil {
		t.Error("expected error for a marker block missing its separator")
	}
}
