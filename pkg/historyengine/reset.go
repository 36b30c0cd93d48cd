package historyengine

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/index"
	"github.com/odvcencio/graft/pkg/object"
)

// ResetMode selects how much of the repository's state Reset rewinds.
type ResetMode int

const (
	// ResetSoft moves HEAD only; the index and working tree are untouched.
	ResetSoft ResetMode = iota
	// ResetMixed moves HEAD and reloads the index from the target commit's
	// tree; the working tree is untouched.
	ResetMixed
	// ResetHard moves HEAD, reloads the index, and overwrites the working
	// tree to match the target commit's tree.
	ResetHard
)

// Reset moves HEAD to target and, depending on mode, also resets the
// index and/or working tree (spec §4.6 reset: soft/mixed/hard).
//
// This is a from-scratch implementation, not an adaptation of the
// teacher's pkg/repo/reset.go, which is a path-scoped "unstage one file"
// operation with no soft/mixed/hard modes at all; see DESIGN.md.
func (e *Engine) Reset(target object.Hash, mode ResetMode) error {
	headHash, err := e.headCommit()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	var expectedOld *object.Hash
	if headHash != "" {
		expectedOld = &headHash
	} else {
		empty := object.Hash("")
		expectedOld = &empty
	}
	if err := e.Refs.Update("HEAD", target, expectedOld); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if mode == ResetSoft {
		return nil
	}

	commit, err := e.Store.GetCommit(target)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if mode == ResetMixed {
		next, err := index.FromTree(e.Store, commit.TreeHash)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		return e.SaveIndex(next)
	}

	// ResetHard: also overwrite the working tree.
	cur, err := e.LoadIndex()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	next, err := e.WT.CheckoutTree(e.Store, cur, commit.TreeHash)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return e.SaveIndex(next)
}
