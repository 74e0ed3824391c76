package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirArtifactStore writes screenshot artifacts to a local directory and hands
// back the URL path they are served under.
type DirArtifactStore struct {
	dir string
}

func NewDirArtifactStore(dir string) (*DirArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &DirArtifactStore{dir: dir}, nil
}

func (s *DirArtifactStore) Dir() string {
	return s.dir
}

// Save writes one screenshot, keyed by job id and record sequence.
func (s *DirArtifactStore) Save(jobID string, sequence int, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%d.png", jobID, sequence)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	return "/screenshots/" + name, nil
}
