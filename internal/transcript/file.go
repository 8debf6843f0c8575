package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per language code, named
// history_<NormalizedCode>.json, as a human-readable array of
// {role, parts:[{text}]} objects.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir ("." if empty).
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) path(langCode string) string {
	return filepath.Join(s.dir, fmt.Sprintf("history_%s.json", NormalizeCode(langCode)))
}

// Load reads the full transcript for langCode. A missing file or malformed
// JSON yields an empty transcript with no error.
func (s *FileStore) Load(ctx context.Context, langCode string) (Transcript, error) {
	_ = ctx

	data, err := os.ReadFile(s.path(langCode))
	if os.IsNotExist(err) {
		return Transcript{}, nil
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("read history for %q: %w", langCode, err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		// Corrupt record: treated as no history rather than a fatal state.
		return Transcript{}, nil
	}
	return t, nil
}

// Save overwrites the record for langCode with the full transcript. The write
// goes through a temp file and rename so a crash never leaves a half-written
// record behind.
func (s *FileStore) Save(ctx context.Context, langCode string, t Transcript) error {
	_ = ctx

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	if t == nil {
		t = Transcript{}
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history for %q: %w", langCode, err)
	}

	filename := s.path(langCode)
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write history for %q: %w", langCode, err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("save history for %q: %w", langCode, err)
	}
	return nil
}

// Clear removes the record for langCode. Best effort: a missing file, or a
// file we cannot remove, is not an error.
func (s *FileStore) Clear(ctx context.Context, langCode string) error {
	_ = ctx

	_ = os.Remove(s.path(langCode))
	return nil
}
