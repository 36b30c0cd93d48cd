// Package merge3 implements the three-way merge component (spec §4.5): a
// per-path decision over the union of paths present in base/ours/theirs,
// producing either a clean merged tree or a conflict-aware index.
//
// Grounded on the teacher's pkg/diff3/diff3.go chunk-alignment textual
// merger (adapted in linemerge.go to always emit the mandatory BASE marker
// section) and pkg/repo/tree.go's tree-walking idiom for flattening trees
// to path maps; the per-path decision table itself follows spec §4.5's
// seven steps, which the teacher's repo never implements as a general
// tree-level merge (its pkg/repo/merge.go predates the conflict-type
// taxonomy and resolves everything as plain content conflicts).
package merge3

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/object"
)

// Result is the outcome of a tree-level three-way merge.
type Result struct {
	// Tree is the resulting root tree oid. It is set only when every path
	// merged cleanly; when conflicts remain it is empty (spec §4.3's
	// "write_tree fails iff conflicts present" rule) and the returned
	// Index is the only record of what did merge cleanly.
	Tree object.Hash
	// Index carries one entry per path (clean or conflict) and is the
	// artifact callers stage for the working commit.
	Index *index.Index
}

// MergeTrees merges treeOurs and treeTheirs against their common ancestor
// treeBase, implementing spec §4.5 steps 1-7 for every path in the union of
// the three trees.
func MergeTrees(store *object.Store, treeBase, treeOurs, treeTheirs object.Hash) (Result, error) {
	base, err := flattenTree(store, treeBase)
	if err != nil {
		return Result{}, fmt.Errorf("merge3: flatten base: %w", err)
	}
	ours, err := flattenTree(store, treeOurs)
	if err != nil {
		return Result{}, fmt.Errorf("merge3: flatten ours: %w", err)
	}
	theirs, err := flattenTree(store, treeTheirs)
	if err != nil {
		return Result{}, fmt.Errorf("merge3: flatten theirs: %w", err)
	}

	idx := index.New()
	for path := range unionPaths(base, ours, theirs) {
		baseHash, inBase := base[path]
		ourHash, inOurs := ours[path]
		theirHash, inTheirs := theirs[path]

		if err := mergePath(store, idx, path, baseHash, inBase, ourHash, inOurs, theirHash, inTheirs); err != nil {
			return Result{}, fmt.Errorf("merge3: path %q: %w", path, err)
		}
	}

	tree, err := idx.WriteTree(store)
	if err != nil {
		// Conflicts present: WriteTree refuses. The caller still gets the
		// index to inspect/resolve; Tree is left empty.
		return Result{Index: idx}, nil
	}
	return Result{Tree: tree, Index: idx}, nil
}

func mergePath(store *object.Store, idx *index.Index, path string,
	baseHash object.Hash, inBase bool,
	ourHash object.Hash, inOurs bool,
	theirHash object.Hash, inTheirs bool,
) error {
	// Step 4: absent on both sides (and possibly base) — nothing to do.
	if !inOurs && !inTheirs {
		return nil
	}

	// Step 2: both sides match base (or each other) exactly — unchanged.
	if inOurs && inTheirs && ourHash == theirHash {
		idx.Stage(path, ourHash)
		return nil
	}

	// Step 3: one side is unchanged from base (or absent from base,
	// identical to the other's only state) — take the changed side.
	if inBase {
		if inOurs && !inTheirs && ourHash == baseHash {
			// ours unchanged, theirs deleted: take the deletion.
			return nil
		}
		if !inOurs && inTheirs && theirHash == baseHash {
			// theirs unchanged, ours deleted: take the deletion.
			return nil
		}
		if inOurs && inTheirs && ourHash == baseHash {
			idx.Stage(path, theirHash)
			return nil
		}
		if inOurs && inTheirs && theirHash == baseHash {
			idx.Stage(path, ourHash)
			return nil
		}
	} else {
		if inOurs && !inTheirs {
			idx.Stage(path, ourHash)
			return nil
		}
		if !inOurs && inTheirs {
			idx.Stage(path, theirHash)
			return nil
		}
	}

	// Step 6: one side deleted relative to base, the other modified
	// relative to base — no textual merge, straight typed conflict.
	if inBase {
		if !inOurs && inTheirs && theirHash != baseHash {
			return stageConflict(idx, path, index.CurrentDeleteTargetModify, baseHash, "", theirHash, "")
		}
		if inOurs && !inTheirs && ourHash != baseHash {
			return stageConflict(idx, path, index.CurrentModifyTargetDelete, baseHash, ourHash, "", "")
		}
	}

	// Step 5 / step 7: present on both sides, disagreeing, and not caught
	// by the unchanged-side shortcuts above. Absent from base => add-add;
	// present in base => a genuine content conflict. Either way attempt a
	// textual three-way merge before declaring an unresolved conflict.
	conflictType := index.ContentConflict
	if !inBase {
		conflictType = index.AddAdd
	}

	baseBlob, err := blobData(store, baseHash, inBase)
	if err != nil {
		return err
	}
	ourBlob, err := blobData(store, ourHash, inOurs)
	if err != nil {
		return err
	}
	theirBlob, err := blobData(store, theirHash, inTheirs)
	if err != nil {
		return err
	}

	result := MergeText(baseBlob, ourBlob, theirBlob)
	if !result.HasConflict {
		mergedHash, err := store.PutBlob(&object.Blob{Data: result.Merged})
		if err != nil {
			return fmt.Errorf("put merged blob: %w", err)
		}
		idx.Stage(path, mergedHash)
		return nil
	}

	mergedHash, err := store.PutBlob(&object.Blob{Data: result.Merged})
	if err != nil {
		return fmt.Errorf("put conflict-marker blob: %w", err)
	}
	return stageConflict(idx, path, conflictType, baseHash, ourHash, theirHash, mergedHash)
}

func stageConflict(idx *index.Index, path string, typ index.ConflictType, base, head, other, merged object.Hash) error {
	idx.StageConflict(path, typ, base, head, other, merged)
	return nil
}

func blobData(store *object.Store, h object.Hash, present bool) ([]byte, error) {
	if !present || h == "" {
		return nil, nil
	}
	b, err := store.GetBlob(h)
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", h, err)
	}
	return b.Data, nil
}

func unionPaths(maps ...map[string]object.Hash) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range maps {
		for p := range m {
			out[p] = struct{}{}
		}
	}
	return out
}

func flattenTree(store *object.Store, treeHash object.Hash) (map[string]object.Hash, error) {
	out := make(map[string]object.Hash)
	if treeHash == "" {
		return out, nil
	}
	if err := flattenTreeInto(store, treeHash, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenTreeInto(store *object.Store, treeHash object.Hash, prefix string, out map[string]object.Hash) error {
	tr, err := store.GetTree(treeHash)
	if err != nil {
		return err
	}
	for _, e := range tr.Entries {
		full := e.Name
		if prefix != "" {
			full = prefix + "/" + e.Name
		}
		if e.Kind == object.KindTree {
			if err := flattenTreeInto(store, e.Hash, full, out); err != nil {
				return err
			}
			continue
		}
		out[full] = e.Hash
	}
	return nil
}
