// Package index implements the staging area (spec §4.3): a path → entry
// map where an entry is either clean (a single oid) or a typed conflict
// record carrying the three-way inputs needed to resume or abort.
//
// Grounded on the teacher's pkg/repo/staging.go (atomic JSON persistence)
// and pkg/repo/tree.go (directory-grouped bottom-up tree build), adapted
// from the teacher's flat StagingEntry shape to the conflict-aware shape
// spec §3 defines, which mirrors original_source/gitforge/objects.py's
// get_index() JSON structure almost exactly.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/graft/pkg/object"
)

// State discriminates a clean entry from an unresolved conflict.
type State string

const (
	StateClean    State = "clean"
	StateConflict State = "conflict"
)

// ConflictType tags the shape of an unresolved three-way merge outcome
// (spec §3, §4.5).
type ConflictType string

const (
	ContentConflict           ConflictType = "content_conflict"
	AddAdd                    ConflictType = "add_add"
	CurrentDeleteTargetModify ConflictType = "current_delete_target_modify"
	CurrentModifyTargetDelete ConflictType = "current_modify_target_delete"
)

// Entry is one index record for a single path.
type Entry struct {
	Path  string       `json:"-"`
	State State        `json:"state"`
	Oid   object.Hash  `json:"oid,omitempty"`
	Type  ConflictType `json:"type,omitempty"`
	Base  object.Hash  `json:"base,omitempty"`
	Head  object.Hash  `json:"head,omitempty"`
	Other object.Hash  `json:"other,omitempty"`
}

// Index is the full staging area. An empty index is legal (spec §3).
type Index struct {
	Entries map[string]*Entry `json:"entries"`
}

// New returns an empty index.
func New() *Index {
	return &Index{Entries: make(map[string]*Entry)}
}

// Load reads an index from path. A missing file yields an empty index,
// not an error.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("index load: %w", err)
	}

	var raw struct {
		Entries map[string]*Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("index load: unmarshal: %w", err)
	}
	idx := New()
	for p, e := range raw.Entries {
		e.Path = p
		idx.Entries[p] = e
	}
	return idx, nil
}

// Save persists the index atomically: write-to-temp + rename (spec §5,
// §9 "Index save atomicity").
func (idx *Index) Save(path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("index save: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("index save: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("index save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index save: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index save: rename: %w", err)
	}
	return nil
}

// Stage records path as clean, pointing at oid.
func (idx *Index) Stage(path string, oid object.Hash) {
	idx.Entries[path] = &Entry{Path: path, State: StateClean, Oid: oid}
}

// StageConflict records path as an unresolved conflict of the given type,
// preserving the three-way inputs. mergedOid is the blob holding conflict
// markers for textual conflicts, and is empty for delete/modify conflicts
// (spec §4.5 step 6: "no textual merge").
func (idx *Index) StageConflict(path string, typ ConflictType, base, head, other, mergedOid object.Hash) {
	idx.Entries[path] = &Entry{
		Path: path, State: StateConflict, Type: typ,
		Base: base, Head: head, Other: other, Oid: mergedOid,
	}
}

// Clear removes path from the index (used when a side deletes a path that
// resolves cleanly, or by explicit "rm").
func (idx *Index) Clear(path string) {
	delete(idx.Entries, path)
}

// Get returns the entry for path, if any.
func (idx *Index) Get(path string) (*Entry, bool) {
	e, ok := idx.Entries[path]
	return e, ok
}

// List returns all entries sorted by path.
func (idx *Index) List() []*Entry {
	paths := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*Entry, 0, len(paths))
	for _, p := range paths {
		out = append(out, idx.Entries[p])
	}
	return out
}

// HasConflicts reports whether any entry is in the conflict state.
func (idx *Index) HasConflicts() bool {
	for _, e := range idx.Entries {
		if e.State == StateConflict {
			return true
		}
	}
	return false
}

// ConflictPaths returns the paths currently in conflict state, sorted.
func (idx *Index) ConflictPaths() []string {
	var paths []string
	for p, e := range idx.Entries {
		if e.State == StateConflict {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// ErrConflictsPresent is returned by WriteTree when the index has any
// conflict entry (spec §4.3, §8: "write_tree fails iff the index has any
// conflict entry").
var ErrConflictsPresent = errors.New("index: conflicts present")

// WriteTree groups clean entries by directory prefix and recursively
// builds tree objects bottom-up, returning the root oid. Fails if any
// entry is in the conflict state.
func (idx *Index) WriteTree(store *object.Store) (object.Hash, error) {
	if idx.HasConflicts() {
		return "", fmt.Errorf("index write-tree: %w", ErrConflictsPresent)
	}
	return writeTreeDir(store, idx, "")
}

func writeTreeDir(store *object.Store, idx *Index, prefix string) (object.Hash, error) {
	files := make(map[string]*Entry)
	subdirs := make(map[string]struct{})

	for p, e := range idx.Entries {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}
		if slash := strings.IndexByte(rel, '/'); slash < 0 {
			files[rel] = e
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		if _, isFile := files[name]; !isFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if e, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{Kind: object.KindBlob, Name: name, Hash: e.Oid})
			continue
		}
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		subHash, err := writeTreeDir(store, idx, childPrefix)
		if err != nil {
			return "", fmt.Errorf("index write-tree %q: %w", childPrefix, err)
		}
		entries = append(entries, object.TreeEntry{Kind: object.KindTree, Name: name, Hash: subHash})
	}

	h, err := store.PutTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("index write-tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FromTree rebuilds a flat index from a tree object, recursively flattening
// subtrees. Used to reload the index after reset/checkout against a
// target commit's tree (spec §4.6 "mixed: ... reload index from the new
// commit's tree").
func FromTree(store *object.Store, treeHash object.Hash) (*Index, error) {
	idx := New()
	if err := flattenInto(store, idx, treeHash, ""); err != nil {
		return nil, err
	}
	return idx, nil
}

func flattenInto(store *object.Store, idx *Index, treeHash object.Hash, prefix string) error {
	tr, err := store.GetTree(treeHash)
	if err != nil {
		return fmt.Errorf("index from-tree: %w", err)
	}
	for _, e := range tr.Entries {
		full := e.Name
		if prefix != "" {
			full = prefix + "/" + e.Name
		}
		if e.Kind == object.KindTree {
			if err := flattenInto(store, idx, e.Hash, full); err != nil {
				return err
			}
			continue
		}
		idx.Stage(full, e.Hash)
	}
	return nil
}
