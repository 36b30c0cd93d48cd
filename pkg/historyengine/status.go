package historyengine

import (
	"fmt"
	"sort"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/object"
	"github.com/odvcencio/graft/pkg/workingtree"
)

// ChangeType classifies one path's difference between two snapshots.
type ChangeType string

const (
	Added    ChangeType = "added"
	Modified ChangeType = "modified"
	Deleted  ChangeType = "deleted"
)

// PathChange is one path that differs between two snapshots being compared.
type PathChange struct {
	Path string
	Type ChangeType
}

// Status reports how the working tree, index, and HEAD commit currently
// differ (spec §4.4/§4.6): staged changes are index-vs-HEAD, unstaged
// changes are working-tree-vs-index, plus untracked files and any
// unresolved merge/cherry-pick/rebase conflicts.
//
// Grounded on the teacher's pkg/repo/status.go for the three-way
// comparison shape, but deliberately without its rename/copy detection
// (spec Non-goal) — same-content adds/deletes on different paths are
// reported as a plain add and a plain delete, never paired.
type Status struct {
	Staged    []PathChange
	Unstaged  []PathChange
	Untracked []string
	Conflicts []string
}

func (e *Engine) Status(ic *workingtree.IgnoreChecker) (Status, error) {
	idx, err := e.LoadIndex()
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}

	var headIdx *index.Index
	headHash, err := e.headCommit()
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}
	if headHash == "" {
		headIdx = index.New()
	} else {
		headCommit, err := e.Store.GetCommit(headHash)
		if err != nil {
			return Status{}, fmt.Errorf("status: %w", err)
		}
		headIdx, err = index.FromTree(e.Store, headCommit.TreeHash)
		if err != nil {
			return Status{}, fmt.Errorf("status: %w", err)
		}
	}

	st := Status{}
	st.Staged = diffIndexes(headIdx, idx, true)

	onDisk := make(map[string]object.Hash)
	if err := e.WT.Walk(ic, func(relPath string) error {
		data, err := e.WT.ReadFile(relPath)
		if err != nil {
			return fmt.Errorf("hash %q: %w", relPath, err)
		}
		onDisk[relPath] = object.HashObject(object.TypeBlob, data)
		return nil
	}); err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}

	for _, entry := range idx.List() {
		if entry.State == index.StateConflict {
			st.Conflicts = append(st.Conflicts, entry.Path)
			continue
		}
		diskHash, present := onDisk[entry.Path]
		switch {
		case !present:
			st.Unstaged = append(st.Unstaged, PathChange{Path: entry.Path, Type: Deleted})
		case diskHash != entry.Oid:
			st.Unstaged = append(st.Unstaged, PathChange{Path: entry.Path, Type: Modified})
		}
	}
	for path := range onDisk {
		if _, tracked := idx.Get(path); !tracked {
			st.Untracked = append(st.Untracked, path)
		}
	}

	sort.Slice(st.Unstaged, func(i, j int) bool { return st.Unstaged[i].Path < st.Unstaged[j].Path })
	sort.Strings(st.Untracked)
	sort.Strings(st.Conflicts)
	return st, nil
}

// diffIndexes compares two flat indexes path-by-path. skipConflicts
// excludes conflicted "to" entries, since those are reported separately.
func diffIndexes(from, to *index.Index, skipConflicts bool) []PathChange {
	paths := make(map[string]bool)
	for _, e := range from.List() {
		paths[e.Path] = true
	}
	for _, e := range to.List() {
		paths[e.Path] = true
	}

	var changes []PathChange
	for path := range paths {
		fromEntry, inFrom := from.Get(path)
		toEntry, inTo := to.Get(path)
		if inTo && toEntry.State == index.StateConflict && skipConflicts {
			continue
		}
		switch {
		case !inFrom && inTo:
			changes = append(changes, PathChange{Path: path, Type: Added})
		case inFrom && !inTo:
			changes = append(changes, PathChange{Path: path, Type: Deleted})
		case inFrom && inTo && fromEntry.Oid != toEntry.Oid:
			changes = append(changes, PathChange{Path: path, Type: Modified})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}
