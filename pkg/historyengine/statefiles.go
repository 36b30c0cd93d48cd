package historyengine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/graft/pkg/object"
)

// writeRefFile atomically writes a single hash to one of the single-purpose
// pointer files under the metadata directory (MERGE_HEAD, CHERRY_PICK_HEAD,
// ORIG_HEAD), mirroring how refstore writes ref files.
func writeRefFile(path string, hash object.Hash) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "state-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(string(hash) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readRefFile reads a hash written by writeRefFile.
func readRefFile(path string) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// removeRefFile deletes a state pointer file, tolerating its absence.
func removeRefFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
