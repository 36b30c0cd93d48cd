// Package workingtree implements the filesystem adapter spec §6 names but
// deliberately keeps out of core scope: checking out a tree to disk,
// hashing a working file into a blob, and writing conflict-marker content
// for a path still in conflict. The core engine never touches the
// filesystem directly; everything it needs from disk flows through this
// package.
//
// Grounded on the teacher's pkg/repo/checkout.go (remove-tracked-then-
// write-target checkout algorithm) and ignore.go (retargeted in ignore.go
// of this package). File permission bits are not part of the object model
// here (spec §3 defines Tree entries as {kind, name, oid} with no mode
// field), so every written file gets a fixed 0644/0755; the teacher's
// filemode.go executable-bit plumbing has no home in this architecture and
// is not ported (see DESIGN.md).
package workingtree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/object"
)

// Tree is a working directory rooted at Root, backed by an object store.
type Tree struct {
	Root string
}

// New returns a working tree rooted at root.
func New(root string) *Tree {
	return &Tree{Root: root}
}

// CheckoutTree removes every path tracked by cur (the index before the
// checkout) that target does not contain, writes every blob in target
// (overwriting paths present in both), then returns the index that
// reflects the new tree (spec §4.6 checkout: "remove tracked files absent
// from target tree, write target tree's files, update the index").
func (wt *Tree) CheckoutTree(store *object.Store, cur *index.Index, target object.Hash) (*index.Index, error) {
	next, err := index.FromTree(store, target)
	if err != nil {
		return nil, fmt.Errorf("checkout: flatten target tree: %w", err)
	}

	if cur != nil {
		for _, e := range cur.List() {
			if _, stillPresent := next.Get(e.Path); stillPresent {
				continue
			}
			abs := filepath.Join(wt.Root, filepath.FromSlash(e.Path))
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("checkout: remove %q: %w", e.Path, err)
			}
			wt.removeEmptyParents(filepath.Dir(abs))
		}
	}

	for _, e := range next.List() {
		abs := filepath.Join(wt.Root, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("checkout: mkdir for %q: %w", e.Path, err)
		}
		blob, err := store.GetBlob(e.Oid)
		if err != nil {
			return nil, fmt.Errorf("checkout: read blob for %q: %w", e.Path, err)
		}
		if err := os.WriteFile(abs, blob.Data, 0o644); err != nil {
			return nil, fmt.Errorf("checkout: write %q: %w", e.Path, err)
		}
	}

	return next, nil
}

// WriteBlob reads relPath from disk, stores it as a blob, and returns its
// oid. Used by the "add" / stage-a-path family of operations.
func (wt *Tree) WriteBlob(store *object.Store, relPath string) (object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(wt.Root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("hash file %q: %w", relPath, err)
	}
	h, err := store.PutBlob(&object.Blob{Data: data})
	if err != nil {
		return "", fmt.Errorf("hash file %q: %w", relPath, err)
	}
	return h, nil
}

// WriteConflictMarkers writes merged conflict-marker content to relPath,
// overwriting whatever was there (spec §6 external interface:
// write_conflict_markers(path, merged_bytes)).
func (wt *Tree) WriteConflictMarkers(relPath string, mergedBytes []byte) error {
	abs := filepath.Join(wt.Root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("write conflict markers %q: %w", relPath, err)
	}
	if err := os.WriteFile(abs, mergedBytes, 0o644); err != nil {
		return fmt.Errorf("write conflict markers %q: %w", relPath, err)
	}
	return nil
}

// ReadFile returns the current on-disk contents of relPath.
func (wt *Tree) ReadFile(relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(wt.Root, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", relPath, err)
	}
	return data, nil
}

// Walk visits every non-ignored regular file under the working tree,
// yielding paths relative to Root with forward slashes.
func (wt *Tree) Walk(ic *IgnoreChecker, fn func(relPath string) error) error {
	return filepath.Walk(wt.Root, func(abs string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(wt.Root, abs)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if ic.IsIgnored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		return fn(rel)
	})
}

func (wt *Tree) removeEmptyParents(dir string) {
	for {
		if dir == wt.Root || !strings.HasPrefix(dir, wt.Root) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
