package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeJSONAtomic writes v as JSON to path via a temp file in the same
// directory followed by rename, so concurrent readers never observe a
// partially-written file.
//
// Grounded on the teacher's fileStore.Save (memory/filestore.go): create the
// parent directory, write to a sibling temp file, then rename over the
// target; clean up the temp file on any failure before the rename.
func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("coordinator: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("coordinator: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("coordinator: encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("coordinator: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("coordinator: rename into %s: %w", path, err)
	}
	return nil
}

// readJSON reads and decodes the JSON file at path into v. It returns
// os.ErrNotExist (wrapped) if the file is absent, and a decode error if the
// file is corrupt; callers treat both as "no usable record" per the
// filesystem-as-shared-mutable-state tolerance requirement.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("coordinator: corrupt file %s: %w", path, err)
	}
	return nil
}

// removeIfExists removes path, treating an already-missing file as success.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// listJSONFiles returns the base names (without extension) of all regular,
// non-hidden files directly under dir. A missing dir yields an empty list.
func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || len(e.Name()) == 0 || e.Name()[0] == '.' {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return names, nil
}
