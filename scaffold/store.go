package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	codeFileName     = "scaffold.py"
	metadataFileName = "metadata.json"

	dirPermission  = 0o755
	filePermission = 0o644
)

// Store is the append-only on-disk scaffold store. Each scaffold gets one
// directory holding its source and metadata record, enabling full lineage
// reconstruction after a run completes.
type Store struct {
	root string
}

// NewStore creates (if needed) and opens a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return nil, fmt.Errorf("failed to create scaffold store: %w", err)
	}
	return &Store{root: dir}, nil
}

// Save writes a scaffold's source and metadata under its id. Saving an
// id twice is a caller bug: the store is append-only.
func (s *Store) Save(id string, result Result) error {
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("scaffold %s already exists", id)
	}
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return fmt.Errorf("failed to create scaffold dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, codeFileName), []byte(result.Code), filePermission); err != nil {
		return fmt.Errorf("failed to write scaffold code: %w", err)
	}

	meta, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scaffold metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), meta, filePermission); err != nil {
		return fmt.Errorf("failed to write scaffold metadata: %w", err)
	}

	return nil
}

// Load reads a scaffold back by id.
func (s *Store) Load(id string) (Result, error) {
	dir := filepath.Join(s.root, id)

	code, err := os.ReadFile(filepath.Join(dir, codeFileName))
	if err != nil {
		return Result{}, fmt.Errorf("scaffold %s not found: %w", id, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if err != nil {
		return Result{}, fmt.Errorf("scaffold %s metadata not found: %w", id, err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Result{}, fmt.Errorf("scaffold %s metadata is corrupt: %w", id, err)
	}

	return Result{Code: string(code), Metadata: meta}, nil
}

// Dir returns the absolute path of a saved scaffold's directory, for
// mounting into the sandbox.
func (s *Store) Dir(id string) (string, error) {
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("scaffold %s not found: %w", id, err)
	}
	return filepath.Abs(dir)
}

// List returns all stored scaffold ids in lexical order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read scaffold store: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Lineage walks parent references from id back to its initial-population
// root, returning ids ordered root-first.
func (s *Store) Lineage(id string) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)

	for id != "" {
		if seen[id] {
			return nil, fmt.Errorf("lineage cycle at scaffold %s", id)
		}
		seen[id] = true
		chain = append(chain, id)

		result, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		id = result.Metadata.ParentID
	}

	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
