// File: internal/infra/media/store.go
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/repository"
)

var _ repository.AssetStore = (*Store)(nil)

// Store writes binary assets under {root}/images and hands back the path
// relative to root, which is what gets persisted on the document.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Save writes the asset and returns its relative path. The suggested name is
// sanitized; an empty or unusable suggestion falls back to a random name.
func (s *Store) Save(data []byte, suggestedName string) (string, error) {
	name := sanitizeName(suggestedName)
	if name == "" {
		name = fmt.Sprintf("asset_%s.png", uuid.NewString())
	}

	rel := filepath.Join("images", name)
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
