package historyengine

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/object"
)

// ErrEmptyCommit is returned by apply when replaying a commit (cherry-pick
// or rebase) would produce a tree identical to its sole parent's — nothing
// changed, so there is nothing to record.
var ErrEmptyCommit = errors.New("historyengine: resulting commit would be empty")

// applySpec parameterises the single commit-construction path shared by
// Commit, Merge, CherryPick and Rebase (spec §4.6: "a shared apply-commit
// kernel parameterized by (parents, author_source, message_source)").
//
// Grounded on the teacher's pkg/repo/commit.go (build tree already done by
// the caller, stamp identity, write commit, CAS the current ref) and
// merge.go's commitMerge (multi-parent variant of the same shape); this
// kernel generalises both into one function so merge/cherry-pick/rebase
// cannot drift from commit's own error handling and ref-update semantics.
type applySpec struct {
	Tree      object.Hash
	Parents   []object.Hash
	Committer object.Identity

	// Original, when non-nil, is the commit being replayed. Its author and
	// message are preserved (cherry-pick, rebase); when nil, Message is
	// used verbatim and Committer doubles as the author (plain commit,
	// merge).
	Original *object.CommitObj
	Message  string

	// SkipIfEmpty causes apply to return ErrEmptyCommit when Tree equals
	// the sole parent's tree (cherry-pick/rebase replaying a no-op commit).
	SkipIfEmpty bool
}

func (e *Engine) apply(spec applySpec) (object.Hash, error) {
	if spec.SkipIfEmpty && len(spec.Parents) == 1 {
		parentCommit, err := e.Store.GetCommit(spec.Parents[0])
		if err != nil {
			return "", fmt.Errorf("apply: read parent: %w", err)
		}
		if parentCommit.TreeHash == spec.Tree {
			return "", ErrEmptyCommit
		}
	}

	author := spec.Committer
	message := spec.Message
	if spec.Original != nil {
		author = spec.Original.Author
		message = spec.Original.Message
	}

	commit := &object.CommitObj{
		TreeHash:  spec.Tree,
		Parents:   spec.Parents,
		Author:    author,
		Committer: spec.Committer,
		Message:   message,
	}
	hash, err := e.Store.PutCommit(commit)
	if err != nil {
		return "", fmt.Errorf("apply: write commit: %w", err)
	}

	var expectedOld *object.Hash
	if len(spec.Parents) > 0 {
		old := spec.Parents[0]
		expectedOld = &old
	} else {
		empty := object.Hash("")
		expectedOld = &empty
	}
	if err := e.Refs.Update("HEAD", hash, expectedOld); err != nil {
		return "", fmt.Errorf("apply: update HEAD: %w", err)
	}

	return hash, nil
}
