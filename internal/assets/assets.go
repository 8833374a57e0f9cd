// Package assets resolves static asset paths to their fingerprinted names
// when a build manifest is present.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manifest maps logical asset names (e.g. "app.js") to fingerprinted files.
type Manifest struct {
	mu     sync.RWMutex
	assets map[string]string
	path   string
}

func NewManifest(staticDir string) *Manifest {
	return &Manifest{
		assets: map[string]string{},
		path:   filepath.Join(staticDir, "manifest.json"),
	}
}

// Load reads manifest.json. A missing manifest means unfingerprinted
// development assets and is not an error.
func (m *Manifest) Load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading asset manifest: %w", err)
	}

	assets := map[string]string{}
	if err := json.Unmarshal(data, &assets); err != nil {
		return fmt.Errorf("parsing asset manifest: %w", err)
	}

	m.mu.Lock()
	m.assets = assets
	m.mu.Unlock()
	return nil
}

// Path returns the URL for name, falling back to the unfingerprinted file.
func (m *Manifest) Path(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if hashed, ok := m.assets[name]; ok {
		return "/static/" + hashed
	}
	return "/static/" + name
}
