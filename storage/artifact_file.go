package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"smart-price/models"
)

// FileArtifactStore keeps a single artifact as a JSON document on disk.
type FileArtifactStore struct {
	Path string
}

// NewFileArtifactStore returns a store rooted at path.
func NewFileArtifactStore(path string) *FileArtifactStore {
	return &FileArtifactStore{Path: path}
}

// Save writes the artifact to a temporary file in the target directory and
// renames it into place, so readers never observe a partial document.
func (s *FileArtifactStore) Save(a *models.Artifact) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("artifact: create dir: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("artifact: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("artifact: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("artifact: close: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("artifact: rename into %q: %w", s.Path, err)
	}
	return nil
}

// Load reads the artifact. It does not validate its contents.
func (s *FileArtifactStore) Load() (*models.Artifact, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("artifact: read %q: %w", s.Path, err)
	}
	var a models.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("artifact: decode %q: %w", s.Path, err)
	}
	return &a, nil
}
