package refstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/graft/pkg/object"
)

const tagsPrefix = "refs/tags/"

// CreateTag creates or updates a lightweight tag ref. Spec §3: tags are
// lightweight-only, a ref pointing at any oid with no standalone object.
func (s *Store) CreateTag(name string, target object.Hash, force bool) error {
	if err := validateRefComponent(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	refName := tagsPrefix + name
	if !force && s.Exists(refName) {
		return fmt.Errorf("create tag: tag %q already exists", name)
	}
	if err := s.Update(refName, target, nil); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// DeleteTag removes refs/tags/<name>.
func (s *Store) DeleteTag(name string) error {
	if err := validateRefComponent(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	refPath := filepath.Join(s.root, filepath.FromSlash(tagsPrefix+name))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete tag: tag %q does not exist", name)
		}
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ResolveTag resolves a tag name to its target oid.
func (s *Store) ResolveTag(name string) (object.Hash, error) {
	if err := validateRefComponent(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return s.Resolve(tagsPrefix+name, true)
}

// ListTags returns tag names sorted alphabetically.
func (s *Store) ListTags() ([]string, error) {
	refs, err := s.List(tagsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, tagsPrefix))
	}
	sort.Strings(names)
	return names, nil
}

func validateRefComponent(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
