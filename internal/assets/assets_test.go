package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManifest_LoadAndPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"app.js":"app.9876.js"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManifest(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := m.Path("app.js"); got != "/static/app.9876.js" {
		t.Fatalf("unexpected path %s", got)
	}
	if got := m.Path("app.css"); got != "/static/app.css" {
		t.Fatalf("expected fallback path, got %s", got)
	}
}

func TestManifest_MissingFileIsDevMode(t *testing.T) {
	m := NewManifest(t.TempDir())
	if err := m.Load(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := m.Path("app.js"); got != "/static/app.js" {
		t.Fatalf("unexpected path %s", got)
	}
}

func TestManifest_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewManifest(dir).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
