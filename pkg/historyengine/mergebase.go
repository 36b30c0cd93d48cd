package historyengine

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/object"
)

// MergeBase finds a common ancestor of a and b by alternately popping
// exactly one commit off each side's frontier and expanding it one
// parent-hop, until a popped commit is found already visited from the
// other side. That commit is returned as the merge base.
//
// This mirrors original_source/gitforge/repository.py's get_merge_base
// node-by-node (frontier1.popleft() / frontier2.popleft()) alternation
// exactly, not a level-synchronized variant that drains an entire
// frontier for one side before the other gets a turn — spec §9 leaves
// multiple-LCA/criss-cross histories unaddressed, and which intersection
// is found first is sensitive to that alternation granularity, so the
// node-by-node order is preserved literally rather than approximated.
// Returning the first intersection found — not necessarily the unique
// lowest one when several incomparable common ancestors exist — matches
// the spec's own scope, not an oversight; see DESIGN.md for the recorded
// decision.
func (e *Engine) MergeBase(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}
	if a == b {
		return a, nil
	}

	visited1 := map[object.Hash]bool{a: true}
	visited2 := map[object.Hash]bool{b: true}
	frontier1 := []object.Hash{a}
	frontier2 := []object.Hash{b}

	for len(frontier1) > 0 || len(frontier2) > 0 {
		if len(frontier1) > 0 {
			var current object.Hash
			current, frontier1 = frontier1[0], frontier1[1:]
			if visited2[current] {
				return current, nil
			}
			commit, err := e.Store.GetCommit(current)
			if err != nil {
				return "", fmt.Errorf("merge-base: read commit %s: %w", current, err)
			}
			for _, p := range commit.Parents {
				if p != "" && !visited1[p] {
					visited1[p] = true
					frontier1 = append(frontier1, p)
				}
			}
		}

		if len(frontier2) > 0 {
			var current object.Hash
			current, frontier2 = frontier2[0], frontier2[1:]
			if visited1[current] {
				return current, nil
			}
			commit, err := e.Store.GetCommit(current)
			if err != nil {
				return "", fmt.Errorf("merge-base: read commit %s: %w", current, err)
			}
			for _, p := range commit.Parents {
				if p != "" && !visited2[p] {
					visited2[p] = true
					frontier2 = append(frontier2, p)
				}
			}
		}
	}

	return "", nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent links.
func (e *Engine) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	if ancestor == "" || descendant == "" {
		return false, nil
	}
	if ancestor == descendant {
		return true, nil
	}

	visited := map[object.Hash]bool{descendant: true}
	queue := []object.Hash{descendant}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		commit, err := e.Store.GetCommit(h)
		if err != nil {
			return false, fmt.Errorf("is-ancestor: read commit %s: %w", h, err)
		}
		for _, p := range commit.Parents {
			if p == "" || visited[p] {
				continue
			}
			if p == ancestor {
				return true, nil
			}
			visited[p] = true
			queue = append(queue, p)
		}
	}
	return false, nil
}
