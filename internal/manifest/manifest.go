package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

const (
	FileName = "manifest.json"
	Version  = 1
)

type Manifest struct {
	Version     int                   `json:"version"`
	GeneratedAt string                `json:"generatedAt"`
	CanvasHash  string                `json:"canvasHash"`
	FontsHash   string                `json:"fontsHash"`
	Images      map[string]ImageEntry `json:"images"`
}

type ImageEntry struct {
	Source     string `json:"source"`
	RecordID   string `json:"recordId"`
	Index      int    `json:"index"`
	RecordHash string `json:"recordHash"`
	Speaker    string `json:"speaker,omitempty"`
}

func New() *Manifest {
	return &Manifest{Version: Version, Images: map[string]ImageEntry{}}
}

// Load reads a manifest, returning nil without error when none exists yet.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Images == nil {
		m.Images = map[string]ImageEntry{}
	}
	return &m, nil
}

func Save(path string, m *Manifest) error {
	if m == nil {
		return errors.New("manifest is nil")
	}
	m.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func (m *Manifest) DropSource(source string) map[string]ImageEntry {
	removed := map[string]ImageEntry{}
	for name, entry := range m.Images {
		if entry.Source == source {
			removed[name] = entry
			delete(m.Images, name)
		}
	}
	return removed
}
