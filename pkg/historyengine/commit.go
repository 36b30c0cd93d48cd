package historyengine

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/object"
)

// Commit builds a tree from the current index, and records a new commit on
// top of HEAD with the given message, authored and committed by committer.
//
// Grounded on the teacher's pkg/repo/commit.go: read staging, build tree,
// resolve HEAD as the (possibly absent) sole parent, write the commit,
// CAS-update the current ref.
func (e *Engine) Commit(message string, committer object.Identity) (object.Hash, error) {
	idx, err := e.LoadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(idx.Entries) == 0 {
		return "", fmt.Errorf("commit: nothing staged")
	}

	treeHash, err := idx.WriteTree(e.Store)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.Hash
	parentHash, err := e.headCommit()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if parentHash != "" {
		parents = append(parents, parentHash)
	}

	hash, err := e.apply(applySpec{
		Tree:      treeHash,
		Parents:   parents,
		Committer: committer,
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash, nil
}

// Log walks history from start (HEAD if start is ""), following first-
// parent links, returning up to limit commits newest-first. limit <= 0
// means unbounded.
func (e *Engine) Log(start object.Hash, limit int) ([]*object.CommitObj, error) {
	if start == "" {
		h, err := e.headCommit()
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		start = h
	}

	var commits []*object.CommitObj
	current := start
	for current != "" && (limit <= 0 || len(commits) < limit) {
		c, err := e.Store.GetCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		commits = append(commits, c)
		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}
	return commits, nil
}
