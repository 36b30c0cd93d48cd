package historyengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/merge3"
	"github.com/odvcencio/graft/pkg/object"
)

// ErrRebaseConflicts is returned by Rebase/RebaseContinue when a replayed
// commit leaves unresolved conflicts; resolve them and call
// RebaseContinue, or give up with RebaseAbort.
var ErrRebaseConflicts = errors.New("historyengine: rebase has unresolved conflicts")

// rebaseState is the persisted sequencer: the commits still to replay and
// where onto, survives process restarts the same way CHERRY_PICK_HEAD does
// for a single cherry-pick (spec §4.6: "a resumable rebase sequencer").
type rebaseState struct {
	Onto     object.Hash   `json:"onto"`
	OrigHead object.Hash   `json:"orig_head"`
	Pending  []object.Hash `json:"pending"`
	Cursor   int           `json:"cursor"`

	// conflictPaths is populated in memory when the sequencer pauses; it
	// is not persisted, since it is fully recomputable from the index.
	conflictPaths []string
}

func (e *Engine) loadRebaseState() (*rebaseState, error) {
	data, err := os.ReadFile(e.rebaseStatePath())
	if err != nil {
		return nil, fmt.Errorf("read rebase state: %w", err)
	}
	var st rebaseState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse rebase state: %w", err)
	}
	return &st, nil
}

func (e *Engine) saveRebaseState(st *rebaseState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rebase state: %w", err)
	}
	tmp, err := os.CreateTemp(e.Dir, "rebase-state-*")
	if err != nil {
		return fmt.Errorf("write rebase state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write rebase state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write rebase state: %w", err)
	}
	return os.Rename(tmp.Name(), e.rebaseStatePath())
}

func (e *Engine) clearRebaseState() error {
	if err := os.Remove(e.rebaseStatePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return removeRefFile(e.origHeadPath())
}

// RebaseResult reports what Rebase/RebaseContinue did.
type RebaseResult struct {
	Commit    object.Hash // HEAD after a completed (or no-op) rebase
	Conflicts []string    // set when the sequencer paused on a conflict
}

// Rebase replays every commit unique to HEAD (relative to their merge
// base) onto upstream, one at a time, via the apply kernel — the pick
// list is first-parent ancestors of HEAD back to the merge base, oldest
// first (spec §4.6: "pick_list = ancestors(HEAD) - ancestors(upstream)").
func (e *Engine) Rebase(upstreamHash object.Hash, committer object.Identity) (RebaseResult, error) {
	headHash, err := e.headCommit()
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}
	if headHash == "" {
		return RebaseResult{}, fmt.Errorf("rebase: no commits on HEAD yet")
	}

	if _, err := os.Stat(e.rebaseStatePath()); err == nil {
		return RebaseResult{}, fmt.Errorf("rebase: a rebase is already in progress")
	}

	base, err := e.MergeBase(headHash, upstreamHash)
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}
	if base == headHash {
		return RebaseResult{}, fmt.Errorf("rebase: already up to date")
	}

	pending, err := e.firstParentChain(headHash, base)
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}
	if len(pending) == 0 {
		return RebaseResult{Commit: headHash}, nil
	}

	if err := writeRefFile(e.origHeadPath(), headHash); err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}

	// Move HEAD (and the working tree) onto upstream before replaying:
	// every pending commit is applied as a child of upstream, not of the
	// branch's own old history.
	if err := e.Refs.Update("HEAD", upstreamHash, &headHash); err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}
	if err := e.checkoutCommit(upstreamHash); err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}

	st := &rebaseState{Onto: upstreamHash, OrigHead: headHash, Pending: pending, Cursor: 0}
	if err := e.saveRebaseState(st); err != nil {
		return RebaseResult{}, fmt.Errorf("rebase: %w", err)
	}
	newHead, err := e.runRebaseSequencer(upstreamHash, st, committer)
	if err != nil {
		return RebaseResult{}, err
	}
	if newHead == "" {
		return RebaseResult{Conflicts: st.conflictPaths}, fmt.Errorf("rebase: %w", ErrRebaseConflicts)
	}
	return RebaseResult{Commit: newHead}, nil
}

// RebaseContinue resumes a paused rebase once the current commit's
// conflicts have been resolved in the index, then keeps replaying the
// remaining pending commits until done or the next conflict.
func (e *Engine) RebaseContinue(committer object.Identity) (RebaseResult, error) {
	st, err := e.loadRebaseState()
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase continue: no rebase in progress: %w", err)
	}

	idx, err := e.LoadIndex()
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase continue: %w", err)
	}
	if idx.HasConflicts() {
		return RebaseResult{}, fmt.Errorf("rebase continue: %w", index.ErrConflictsPresent)
	}

	treeHash, err := idx.WriteTree(e.Store)
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase continue: %w", err)
	}

	headHash, err := e.headCommit()
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase continue: %w", err)
	}
	picked, err := e.Store.GetCommit(st.Pending[st.Cursor])
	if err != nil {
		return RebaseResult{}, fmt.Errorf("rebase continue: %w", err)
	}

	newHead, err := e.apply(applySpec{
		Tree:        treeHash,
		Parents:     []object.Hash{headHash},
		Committer:   committer,
		Original:    picked,
		SkipIfEmpty: true,
	})
	if err != nil && !errors.Is(err, ErrEmptyCommit) {
		return RebaseResult{}, fmt.Errorf("rebase continue: %w", err)
	}
	if err == nil {
		headHash = newHead
	}
	st.Cursor++

	finalHead, err := e.runRebaseSequencer(st.Onto, st, committer)
	if err != nil {
		return RebaseResult{}, err
	}
	if finalHead == "" {
		return RebaseResult{Conflicts: st.conflictPaths}, fmt.Errorf("rebase continue: %w", ErrRebaseConflicts)
	}
	return RebaseResult{Commit: finalHead}, nil
}

// RebaseAbort unwinds a paused rebase, restoring HEAD and the working
// tree to ORIG_HEAD.
func (e *Engine) RebaseAbort() error {
	origHead, err := readRefFile(e.origHeadPath())
	if err != nil {
		return fmt.Errorf("rebase abort: no rebase in progress: %w", err)
	}
	headHash, err := e.headCommit()
	if err != nil {
		return fmt.Errorf("rebase abort: %w", err)
	}
	if err := e.Refs.Update("HEAD", origHead, &headHash); err != nil {
		return fmt.Errorf("rebase abort: %w", err)
	}
	if err := e.checkoutCommit(origHead); err != nil {
		return fmt.Errorf("rebase abort: %w", err)
	}
	return e.clearRebaseState()
}

// runRebaseSequencer replays st.Pending[st.Cursor:] onto the engine's
// current HEAD, persisting st after every step so a crash mid-rebase
// resumes exactly where it left off. Returns "" (with st updated and
// saved) when it pauses on a conflict.
func (e *Engine) runRebaseSequencer(upstreamHash object.Hash, st *rebaseState, committer object.Identity) (object.Hash, error) {
	for st.Cursor < len(st.Pending) {
		picked := st.Pending[st.Cursor]
		commit, err := e.Store.GetCommit(picked)
		if err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}
		if len(commit.Parents) == 0 {
			return "", fmt.Errorf("rebase: %s is a root commit, cannot replay", picked)
		}
		parentCommit, err := e.Store.GetCommit(commit.Parents[0])
		if err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}

		headHash, err := e.headCommit()
		if err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}
		head, err := e.Store.GetCommit(headHash)
		if err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}

		result, err := merge3.MergeTrees(e.Store, parentCommit.TreeHash, head.TreeHash, commit.TreeHash)
		if err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}

		if result.Index.HasConflicts() {
			if err := e.writeMergedWorktree(result.Index); err != nil {
				return "", fmt.Errorf("rebase: %w", err)
			}
			if err := e.SaveIndex(result.Index); err != nil {
				return "", fmt.Errorf("rebase: %w", err)
			}
			st.conflictPaths = result.Index.ConflictPaths()
			if err := e.saveRebaseState(st); err != nil {
				return "", fmt.Errorf("rebase: %w", err)
			}
			return "", nil
		}

		if err := e.writeMergedWorktree(result.Index); err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}
		if err := e.SaveIndex(result.Index); err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}

		if _, err := e.apply(applySpec{
			Tree:        result.Tree,
			Parents:     []object.Hash{headHash},
			Committer:   committer,
			Original:    commit,
			SkipIfEmpty: true,
		}); err != nil && !errors.Is(err, ErrEmptyCommit) {
			return "", fmt.Errorf("rebase: %w", err)
		}
		st.Cursor++
		if err := e.saveRebaseState(st); err != nil {
			return "", fmt.Errorf("rebase: %w", err)
		}
	}

	finalHead, err := e.headCommit()
	if err != nil {
		return "", fmt.Errorf("rebase: %w", err)
	}
	if err := e.clearRebaseState(); err != nil {
		return "", fmt.Errorf("rebase: %w", err)
	}
	return finalHead, nil
}

// firstParentChain returns the first-parent ancestors of tip down to (but
// excluding) base, oldest first.
func (e *Engine) firstParentChain(tip, base object.Hash) ([]object.Hash, error) {
	var chain []object.Hash
	current := tip
	for current != "" && current != base {
		chain = append(chain, current)
		commit, err := e.Store.GetCommit(current)
		if err != nil {
			return nil, fmt.Errorf("walk history: %w", err)
		}
		if len(commit.Parents) == 0 {
			current = ""
			break
		}
		current = commit.Parents[0]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
