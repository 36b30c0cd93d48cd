// Package remote implements the minimal remote-sync layer spec §4.6/§6
// describes: a remote is just another repository's metadata directory
// (no network, no packfiles — see spec Non-goals), and syncing it is a
// reachability walk over the object graph plus a fast-forward-safe CAS
// update of the remote's branch ref.
//
// Grounded on original_source/gitforge/remotes.py (a remote is a path to
// another repository, not a server) for the overall shape, and on the
// teacher's pkg/remote/sync.go for the reachability-walk algorithms
// (ReachableSet, CollectObjectsForPush, referencedHashes) — stripped of
// its HTTP client, batch negotiation, and Entity/EntityList object kinds,
// none of which exist in this object model.
package remote

import (
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/graft/pkg/object"
	"github.com/odvcencio/graft/pkg/refstore"
)

// ErrNonFastForward is returned by Push when the remote branch has
// commits the local branch does not, so a plain CAS update would discard
// history (spec §4.6: "push ... fast-forward-safe").
var ErrNonFastForward = errors.New("remote: update is not a fast-forward")

// Remote is another repository's metadata directory, reachable on the
// local filesystem (spec Non-goal excludes any wire protocol).
type Remote struct {
	Dir   string
	Store *object.Store
	Refs  *refstore.Store
}

// Open attaches to a remote repository's metadata directory. It does not
// verify the directory is a valid repository; the first Fetch/Push call
// will surface that.
func Open(metaDir string) *Remote {
	return &Remote{Dir: metaDir, Store: object.NewStore(metaDir), Refs: refstore.New(metaDir)}
}

// Fetch copies every object reachable from remote's branch into
// localStore that localStore doesn't already have, and points
// refs/remotes/<remoteName>/<branch> at the fetched commit. It always
// takes the remote's state as-is: there is no fast-forward requirement
// for a read-only tracking ref.
func Fetch(localStore *object.Store, localRefs *refstore.Store, remote *Remote, remoteName, branch string) (object.Hash, int, error) {
	remoteHash, err := remote.Refs.Resolve("refs/heads/"+branch, true)
	if err != nil {
		return "", 0, fmt.Errorf("fetch: resolve %s on remote: %w", branch, err)
	}

	reachable, err := ReachableSet(remote.Store, []object.Hash{remoteHash})
	if err != nil {
		return "", 0, fmt.Errorf("fetch: %w", err)
	}

	written := 0
	for h := range reachable {
		if localStore.Has(h) {
			continue
		}
		objType, data, err := remote.Store.Get(h)
		if err != nil {
			return "", 0, fmt.Errorf("fetch: read %s from remote: %w", h, err)
		}
		if _, err := localStore.Put(objType, data); err != nil {
			return "", 0, fmt.Errorf("fetch: write %s: %w", h, err)
		}
		written++
	}

	trackingRef := "refs/remotes/" + remoteName + "/" + branch
	var expectedOld *object.Hash
	if old, err := localRefs.Resolve(trackingRef, true); err == nil {
		expectedOld = &old
	} else if !errors.Is(err, refstore.ErrNotFound) {
		return "", 0, fmt.Errorf("fetch: %w", err)
	}
	if err := localRefs.Update(trackingRef, remoteHash, expectedOld); err != nil {
		return "", 0, fmt.Errorf("fetch: update %s: %w", trackingRef, err)
	}

	return remoteHash, written, nil
}

// Push copies every object reachable from localStore's branch, but not
// already reachable from the remote's current branch tip, onto remote,
// then CAS-updates the remote's branch ref — refusing if the remote
// branch has moved since it was last observed to anything other than an
// ancestor of the local branch (spec §4.6 push: fast-forward-safe CAS).
func Push(localStore *object.Store, localRefs *refstore.Store, remote *Remote, branch string) (object.Hash, int, error) {
	localHash, err := localRefs.Resolve("refs/heads/"+branch, true)
	if err != nil {
		return "", 0, fmt.Errorf("push: resolve %s locally: %w", branch, err)
	}

	var remoteHash object.Hash
	if h, err := remote.Refs.Resolve("refs/heads/"+branch, true); err == nil {
		remoteHash = h
	} else if !errors.Is(err, refstore.ErrNotFound) {
		return "", 0, fmt.Errorf("push: resolve %s on remote: %w", branch, err)
	}

	if remoteHash != "" {
		// A remote tip the local store has never seen cannot be in the
		// local branch's history.
		isAncestor := false
		if localStore.Has(remoteHash) {
			isAncestor, err = isAncestorIn(localStore, remoteHash, localHash)
			if err != nil {
				return "", 0, fmt.Errorf("push: %w", err)
			}
		}
		if !isAncestor {
			return "", 0, fmt.Errorf("push: %w", ErrNonFastForward)
		}
	}

	objects, err := CollectObjectsForPush(localStore, []object.Hash{localHash}, []object.Hash{remoteHash})
	if err != nil {
		return "", 0, fmt.Errorf("push: %w", err)
	}
	written := 0
	for _, rec := range objects {
		if remote.Store.Has(rec.Hash) {
			continue
		}
		if _, err := remote.Store.Put(rec.Type, rec.Data); err != nil {
			return "", 0, fmt.Errorf("push: write %s: %w", rec.Hash, err)
		}
		written++
	}

	var expectedOld *object.Hash
	if remoteHash != "" {
		expectedOld = &remoteHash
	} else {
		empty := object.Hash("")
		expectedOld = &empty
	}
	if err := remote.Refs.Update("refs/heads/"+branch, localHash, expectedOld); err != nil {
		return "", 0, fmt.Errorf("push: update remote %s: %w", branch, err)
	}

	return localHash, written, nil
}

// ObjectRecord is one object read off a store for transfer to another.
type ObjectRecord struct {
	Hash object.Hash
	Type object.ObjectType
	Data []byte
}

// ReachableSet returns every object hash reachable from roots within
// store. Missing roots (a "" root, for a branch with no commits yet) are
// ignored rather than erroring.
func ReachableSet(store *object.Store, roots []object.Hash) (map[object.Hash]struct{}, error) {
	out := make(map[object.Hash]struct{})
	stack := uniqueNonEmpty(roots)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[h]; seen {
			continue
		}
		if !store.Has(h) {
			continue
		}
		out[h] = struct{}{}

		objType, data, err := store.Get(h)
		if err != nil {
			return nil, fmt.Errorf("read object %s: %w", h, err)
		}
		refs, err := referencedHashes(objType, data)
		if err != nil {
			return nil, fmt.Errorf("parse object %s (%s): %w", h, objType, err)
		}
		stack = append(stack, refs...)
	}
	return out, nil
}

// CollectObjectsForPush returns every object reachable from roots in
// store, excluding anything also reachable from stopRoots.
func CollectObjectsForPush(store *object.Store, roots, stopRoots []object.Hash) ([]ObjectRecord, error) {
	stopSet, err := ReachableSet(store, stopRoots)
	if err != nil {
		return nil, fmt.Errorf("collect for push: %w", err)
	}

	seen := make(map[object.Hash]struct{})
	stack := uniqueNonEmpty(roots)
	var objects []ObjectRecord
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[h]; ok {
			continue
		}
		if _, stopped := stopSet[h]; stopped {
			continue
		}
		if !store.Has(h) {
			continue
		}
		seen[h] = struct{}{}

		objType, data, err := store.Get(h)
		if err != nil {
			return nil, fmt.Errorf("read object %s: %w", h, err)
		}
		objects = append(objects, ObjectRecord{Hash: h, Type: objType, Data: data})

		refs, err := referencedHashes(objType, data)
		if err != nil {
			return nil, fmt.Errorf("parse object %s (%s): %w", h, objType, err)
		}
		stack = append(stack, refs...)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Hash < objects[j].Hash })
	return objects, nil
}

func referencedHashes(objType object.ObjectType, data []byte) ([]object.Hash, error) {
	switch objType {
	case object.TypeBlob:
		return nil, nil
	case object.TypeCommit:
		commit, err := object.UnmarshalCommit(data)
		if err != nil {
			return nil, err
		}
		refs := make([]object.Hash, 0, 1+len(commit.Parents))
		refs = append(refs, commit.TreeHash)
		refs = append(refs, commit.Parents...)
		return refs, nil
	case object.TypeTree:
		tree, err := object.UnmarshalTree(data)
		if err != nil {
			return nil, err
		}
		refs := make([]object.Hash, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			refs = append(refs, e.Hash)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object type %q", objType)
	}
}

// isAncestorIn walks descendant's parent chain within store looking for
// ancestor, mirroring historyengine.Engine.IsAncestor but over a bare
// *object.Store so this package doesn't need to import historyengine.
func isAncestorIn(store *object.Store, ancestor, descendant object.Hash) (bool, error) {
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
		_, data, err := store.Get(h)
		if err != nil {
			return false, fmt.Errorf("is-ancestor: read %s: %w", h, err)
		}
		commit, err := object.UnmarshalCommit(data)
		if err != nil {
			return false, fmt.Errorf("is-ancestor: parse %s: %w", h, err)
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

func uniqueNonEmpty(in []object.Hash) []object.Hash {
	seen := make(map[object.Hash]bool, len(in))
	out := make([]object.Hash, 0, len(in))
	for _, h := range in {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
