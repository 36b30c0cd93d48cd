package refstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/graft/pkg/object"
)

const headsPrefix = "refs/heads/"

// CreateBranch creates refs/heads/<name> pointing at target. Fails if the
// branch already exists (CAS against an empty expected-old).
func (s *Store) CreateBranch(name string, target object.Hash) error {
	empty := object.Hash("")
	if err := s.Update(headsPrefix+name, target, &empty); err != nil {
		if errors.Is(err, ErrCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists", name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes refs/heads/<name>. Refuses to delete the branch HEAD
// currently points to.
func (s *Store) DeleteBranch(name string) error {
	current, err := s.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}
	refPath := filepath.Join(s.root, filepath.FromSlash(headsPrefix+name))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch: branch %q does not exist", name)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns branch names sorted alphabetically.
func (s *Store) ListBranches() ([]string, error) {
	refs, err := s.List(headsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, headsPrefix))
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch reports the branch HEAD symbolically points to, or "" if
// HEAD is detached.
func (s *Store) CurrentBranch() (string, error) {
	_, symbolic, target, err := s.ResolveOne("HEAD")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if symbolic && strings.HasPrefix(target, headsPrefix) {
		return strings.TrimPrefix(target, headsPrefix), nil
	}
	return "", nil
}
