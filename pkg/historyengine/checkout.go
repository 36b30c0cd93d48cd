package historyengine

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/object"
	"github.com/odvcencio/graft/pkg/refstore"
)

// CheckoutResult reports what Checkout switched HEAD to.
type CheckoutResult struct {
	Commit   object.Hash
	Branch   string // non-empty when target resolved to a branch (HEAD stays symbolic)
	Detached bool   // true when target was a raw commit hash
}

// Checkout switches HEAD, the index, and the working tree to target,
// which is tried first as a branch name (refs/heads/<target>) and
// otherwise treated as a raw commit hash (spec §4.6 checkout).
//
// Grounded on the teacher's pkg/repo/checkout.go for the overall shape
// (resolve target, remove stale tracked files, write target's files,
// update HEAD), with the filesystem work delegated to
// workingtree.Tree.CheckoutTree instead of inlined.
func (e *Engine) Checkout(target string) (CheckoutResult, error) {
	branchRef := "refs/heads/" + target
	var commitHash object.Hash
	var branch string

	if h, err := e.Refs.Resolve(branchRef, true); err == nil {
		commitHash = h
		branch = target
	} else if errors.Is(err, refstore.ErrNotFound) {
		commitHash = object.Hash(target)
	} else {
		return CheckoutResult{}, fmt.Errorf("checkout: %w", err)
	}

	if _, err := e.Store.GetCommit(commitHash); err != nil {
		return CheckoutResult{}, fmt.Errorf("checkout: cannot read commit %s: %w", commitHash, err)
	}

	if branch != "" {
		if err := e.Refs.SymRef("HEAD", branchRef); err != nil {
			return CheckoutResult{}, fmt.Errorf("checkout: %w", err)
		}
	} else {
		// Update follows a symbolic HEAD to its branch, so the pointer is
		// removed first and HEAD itself is written as a direct ref.
		if err := e.Refs.Delete("HEAD"); err != nil {
			return CheckoutResult{}, fmt.Errorf("checkout: %w", err)
		}
		empty := object.Hash("")
		if err := e.Refs.Update("HEAD", commitHash, &empty); err != nil {
			return CheckoutResult{}, fmt.Errorf("checkout: %w", err)
		}
	}

	if err := e.checkoutCommit(commitHash); err != nil {
		return CheckoutResult{}, fmt.Errorf("checkout: %w", err)
	}

	return CheckoutResult{Commit: commitHash, Branch: branch, Detached: branch == ""}, nil
}
