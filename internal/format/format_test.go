package format

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type sample struct {
	ImageID  string   `json:"image_id"`
	Lat      *float64 `json:"lat"`
	Accuracy *float64 `json:"accuracy"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).Write(&buf, sample{ImageID: "abc"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"image_id":"abc","lat":null,"accuracy":null}` {
		t.Fatalf("unexpected json: %s", got)
	}
}

func TestYAMLFormatterUsesJSONNames(t *testing.T) {
	lat := 48.5
	var buf bytes.Buffer
	if err := (YAMLFormatter{}).Write(&buf, sample{ImageID: "abc", Lat: &lat}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "image_id: abc\n") {
		t.Fatalf("expected image_id first in block style, got %q", out)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if decoded["lat"] != 48.5 {
		t.Fatalf("expected lat 48.5, got %#v", decoded["lat"])
	}
	if v, ok := decoded["accuracy"]; !ok || v != nil {
		t.Fatalf("expected null accuracy, got %#v", v)
	}
}

func TestYAMLFormatterList(t *testing.T) {
	var buf bytes.Buffer
	if err := (YAMLFormatter{}).Write(&buf, []sample{{ImageID: "a"}, {ImageID: "b"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(decoded) != 2 || decoded[1]["image_id"] != "b" {
		t.Fatalf("unexpected list: %#v", decoded)
	}
}
