package historyengine

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/merge3"
	"github.com/odvcencio/graft/pkg/object"
)

// ErrMergeConflicts is returned by Merge when the three-way merge leaves
// unresolved conflicts; the caller must inspect the index, resolve them,
// and finish with MergeContinue.
var ErrMergeConflicts = errors.New("historyengine: merge has unresolved conflicts")

// MergeResult reports what Merge (or MergeContinue) did.
type MergeResult struct {
	FastForward bool
	Commit      object.Hash // set when the merge committed (fast-forward or clean three-way)
	Conflicts   []string    // set when conflicts remain
}

// Merge merges theirHash into the current HEAD (spec §4.6 merge driver:
// fast-forward when possible, otherwise a three-way merge with
// parents=[HEAD, MERGE_HEAD]).
//
// Grounded on the teacher's pkg/repo/merge.go for the overall shape
// (resolve heads, find base, merge trees, write working files, commit or
// stage conflicts) but replaces its ad hoc per-file switch and structural
// merge engine with merge3.MergeTrees's typed spec §4.5 decision table.
func (e *Engine) Merge(theirHash object.Hash, committer object.Identity, message string) (MergeResult, error) {
	headHash, err := e.headCommit()
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	if headHash == "" {
		return MergeResult{}, fmt.Errorf("merge: no commits on HEAD yet")
	}

	isAncestor, err := e.IsAncestor(headHash, theirHash)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	if isAncestor {
		// Fast-forward: HEAD is an ancestor of theirs, so just move the ref
		// and reset the working tree/index to theirs (spec §4.6 "merge:
		// fast-forward if HEAD is an ancestor of target").
		if err := e.Refs.Update("HEAD", theirHash, &headHash); err != nil {
			return MergeResult{}, fmt.Errorf("merge: fast-forward: %w", err)
		}
		if err := e.checkoutCommit(theirHash); err != nil {
			return MergeResult{}, fmt.Errorf("merge: fast-forward checkout: %w", err)
		}
		return MergeResult{FastForward: true, Commit: theirHash}, nil
	}

	alreadyMerged, err := e.IsAncestor(theirHash, headHash)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	if alreadyMerged {
		return MergeResult{Commit: headHash}, nil
	}

	baseHash, err := e.MergeBase(headHash, theirHash)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}

	headCommit, err := e.Store.GetCommit(headHash)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	theirCommit, err := e.Store.GetCommit(theirHash)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	var baseTree object.Hash
	if baseHash != "" {
		baseCommit, err := e.Store.GetCommit(baseHash)
		if err != nil {
			return MergeResult{}, fmt.Errorf("merge: %w", err)
		}
		baseTree = baseCommit.TreeHash
	}

	result, err := merge3.MergeTrees(e.Store, baseTree, headCommit.TreeHash, theirCommit.TreeHash)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}

	if result.Index.HasConflicts() {
		if err := e.beginConflictedMerge(theirHash, result.Index); err != nil {
			return MergeResult{}, fmt.Errorf("merge: %w", err)
		}
		return MergeResult{Conflicts: result.Index.ConflictPaths()}, fmt.Errorf("merge: %w", ErrMergeConflicts)
	}

	if err := e.writeMergedWorktree(result.Index); err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	if err := e.SaveIndex(result.Index); err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}

	hash, err := e.apply(applySpec{
		Tree:      result.Tree,
		Parents:   []object.Hash{headHash, theirHash},
		Committer: committer,
		Message:   message,
	})
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	return MergeResult{Commit: hash}, nil
}

// beginConflictedMerge records MERGE_HEAD and persists the conflicted
// index so MergeContinue/MergeAbort can resume or unwind later.
func (e *Engine) beginConflictedMerge(theirHash object.Hash, idx *index.Index) error {
	if err := writeRefFile(e.mergeHeadPath(), theirHash); err != nil {
		return err
	}
	if err := e.writeMergedWorktree(idx); err != nil {
		return err
	}
	return e.SaveIndex(idx)
}

// MergeContinue finishes a merge left conflicted by Merge, once the caller
// has resolved every conflict entry in the index (spec §4.6: merges are
// resumable the same way rebases are).
func (e *Engine) MergeContinue(committer object.Identity, message string) (object.Hash, error) {
	theirHash, err := readRefFile(e.mergeHeadPath())
	if err != nil {
		return "", fmt.Errorf("merge continue: no merge in progress: %w", err)
	}
	headHash, err := e.headCommit()
	if err != nil {
		return "", fmt.Errorf("merge continue: %w", err)
	}

	idx, err := e.LoadIndex()
	if err != nil {
		return "", fmt.Errorf("merge continue: %w", err)
	}
	if idx.HasConflicts() {
		return "", fmt.Errorf("merge continue: %w", index.ErrConflictsPresent)
	}

	treeHash, err := idx.WriteTree(e.Store)
	if err != nil {
		return "", fmt.Errorf("merge continue: %w", err)
	}

	hash, err := e.apply(applySpec{
		Tree:      treeHash,
		Parents:   []object.Hash{headHash, theirHash},
		Committer: committer,
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("merge continue: %w", err)
	}

	_ = removeRefFile(e.mergeHeadPath())
	return hash, nil
}

// MergeAbort discards an in-progress conflicted merge, restoring HEAD's
// tree to the working directory and index.
func (e *Engine) MergeAbort() error {
	headHash, err := e.headCommit()
	if err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	if err := e.checkoutCommit(headHash); err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	return removeRefFile(e.mergeHeadPath())
}

// writeMergedWorktree writes every staged blob to disk, conflicted or not:
// merge3 already bakes the <<<<<<< markers into a conflict entry's blob
// data, so the working tree write is the same for both cases. A
// delete/modify conflict carries no merged blob; its modified side is
// written instead.
func (e *Engine) writeMergedWorktree(idx *index.Index) error {
	for _, entry := range idx.List() {
		oid := entry.Oid
		if oid == "" {
			oid = entry.Head
		}
		if oid == "" {
			oid = entry.Other
		}
		blob, err := e.Store.GetBlob(oid)
		if err != nil {
			return fmt.Errorf("write %q: %w", entry.Path, err)
		}
		if err := e.WT.WriteConflictMarkers(entry.Path, blob.Data); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkoutCommit(commitHash object.Hash) error {
	commit, err := e.Store.GetCommit(commitHash)
	if err != nil {
		return err
	}
	cur, err := e.LoadIndex()
	if err != nil {
		return err
	}
	next, err := e.WT.CheckoutTree(e.Store, cur, commit.TreeHash)
	if err != nil {
		return err
	}
	return e.SaveIndex(next)
}
