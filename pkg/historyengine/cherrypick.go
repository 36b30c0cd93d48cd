package historyengine

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/merge3"
	"github.com/odvcencio/graft/pkg/object"
)

// ErrCherryPickConflicts is returned by CherryPick when the replay leaves
// unresolved conflicts; resolve them and finish with CherryPickContinue,
// or abandon with CherryPickAbort.
var ErrCherryPickConflicts = errors.New("historyengine: cherry-pick has unresolved conflicts")

// CherryPickResult reports what CherryPick did.
type CherryPickResult struct {
	Commit    object.Hash // set when the replay committed
	Skipped   bool        // set when the replay was a no-op and was skipped
	Conflicts []string    // set when conflicts remain
}

// CherryPick replays pickedHash's change onto HEAD: a three-way merge of
// (picked's first parent, HEAD, picked) via the same apply kernel as
// Commit/Merge, preserving picked's author and message (spec §4.6
// cherry-pick: "replay a commit's change on top of a different parent,
// keeping its authorship").
//
// Spec §9 leaves the mainline-parent policy for cherry-picking a merge
// commit open; this implementation picks against the first parent only
// (picked.Parents[0]), matching Commit/Log's own first-parent convention
// elsewhere in this package — see DESIGN.md for the recorded decision.
func (e *Engine) CherryPick(pickedHash object.Hash, committer object.Identity) (CherryPickResult, error) {
	headHash, err := e.headCommit()
	if err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}
	if headHash == "" {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: no commits on HEAD yet")
	}

	picked, err := e.Store.GetCommit(pickedHash)
	if err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}
	if len(picked.Parents) == 0 {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %s is a root commit, nothing to diff against", pickedHash)
	}
	pickedParent, err := e.Store.GetCommit(picked.Parents[0])
	if err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}

	head, err := e.Store.GetCommit(headHash)
	if err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}

	result, err := merge3.MergeTrees(e.Store, pickedParent.TreeHash, head.TreeHash, picked.TreeHash)
	if err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}

	if result.Index.HasConflicts() {
		if err := writeRefFile(e.cherryPickHeadPath(), pickedHash); err != nil {
			return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
		}
		if err := e.writeMergedWorktree(result.Index); err != nil {
			return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
		}
		if err := e.SaveIndex(result.Index); err != nil {
			return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
		}
		return CherryPickResult{Conflicts: result.Index.ConflictPaths()}, fmt.Errorf("cherry-pick: %w", ErrCherryPickConflicts)
	}

	if err := e.writeMergedWorktree(result.Index); err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}
	if err := e.SaveIndex(result.Index); err != nil {
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}

	hash, err := e.apply(applySpec{
		Tree:        result.Tree,
		Parents:     []object.Hash{headHash},
		Committer:   committer,
		Original:    picked,
		SkipIfEmpty: true,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCommit) {
			return CherryPickResult{Skipped: true}, nil
		}
		return CherryPickResult{}, fmt.Errorf("cherry-pick: %w", err)
	}
	return CherryPickResult{Commit: hash}, nil
}

// CherryPickContinue finishes a cherry-pick left conflicted by CherryPick,
// once the caller has resolved every conflict in the index.
func (e *Engine) CherryPickContinue(committer object.Identity) (object.Hash, error) {
	pickedHash, err := readRefFile(e.cherryPickHeadPath())
	if err != nil {
		return "", fmt.Errorf("cherry-pick continue: no cherry-pick in progress: %w", err)
	}
	headHash, err := e.headCommit()
	if err != nil {
		return "", fmt.Errorf("cherry-pick continue: %w", err)
	}
	picked, err := e.Store.GetCommit(pickedHash)
	if err != nil {
		return "", fmt.Errorf("cherry-pick continue: %w", err)
	}

	idx, err := e.LoadIndex()
	if err != nil {
		return "", fmt.Errorf("cherry-pick continue: %w", err)
	}
	if idx.HasConflicts() {
		return "", fmt.Errorf("cherry-pick continue: %w", index.ErrConflictsPresent)
	}

	treeHash, err := idx.WriteTree(e.Store)
	if err != nil {
		return "", fmt.Errorf("cherry-pick continue: %w", err)
	}

	hash, err := e.apply(applySpec{
		Tree:      treeHash,
		Parents:   []object.Hash{headHash},
		Committer: committer,
		Original:  picked,
	})
	if err != nil {
		return "", fmt.Errorf("cherry-pick continue: %w", err)
	}

	_ = removeRefFile(e.cherryPickHeadPath())
	return hash, nil
}

// CherryPickAbort discards an in-progress conflicted cherry-pick.
func (e *Engine) CherryPickAbort() error {
	headHash, err := e.headCommit()
	if err != nil {
		return fmt.Errorf("cherry-pick abort: %w", err)
	}
	if err := e.checkoutCommit(headHash); err != nil {
		return fmt.Errorf("cherry-pick abort: %w", err)
	}
	return removeRefFile(e.cherryPickHeadPath())
}
