package remote

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/object"
)

var testCommitter = object.Identity{Name: "Ada", Email: "ada@example.com", Epoch: 1000, Zone: "+0000"}

func newRepo(t *testing.T) *historyengine.Engine {
	t.Helper()
	e, err := historyengine.Init(t.TempDir(), "main")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return e
}

func commitFile(t *testing.T, e *historyengine.Engine, path, content, message string) object.Hash {
	t.Helper()
	idx, err := e.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	abs := filepath.Join(e.Root, path)
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	hash, err := e.WT.WriteBlob(e.Store, path)
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	idx.Stage(path, hash)
	if err := e.SaveIndex(idx); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	c, err := e.Commit(message, testCommitter)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return c
}

func TestFetchCopiesObjectsAndSetsTrackingRef(t *testing.T) {
	origin := newRepo(t)
	commitFile(t, origin, "a.txt", "v1\n", "first")
	tip := commitFile(t, origin, "a.txt", "v2\n", "second")

	local := newRepo(t)
	remote := Open(origin.Dir)

	fetched, written, err := Fetch(local.Store, local.Refs, remote, "origin", "main")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fetched != tip {
		t.Fatalf("fetched = %s, want %s", fetched, tip)
	}
	if written == 0 {
		t.Fatal("expected Fetch to have written at least one object")
	}

	trackingHash, err := local.Refs.Resolve("refs/remotes/origin/main", true)
	if err != nil {
		t.Fatalf("resolve tracking ref: %v", err)
	}
	if trackingHash != tip {
		t.Fatalf("refs/remotes/origin/main = %s, want %s", trackingHash, tip)
	}

	if _, err := local.Store.GetCommit(tip); err != nil {
		t.Fatalf("expected the fetched commit to be present locally: %v", err)
	}
}

func TestPushFastForwardsRemoteBranch(t *testing.T) {
	origin := newRepo(t)
	root := commitFile(t, origin, "a.txt", "v1\n", "first")

	local := newRepo(t)
	remote := Open(origin.Dir)
	if _, _, err := Fetch(local.Store, local.Refs, remote, "origin", "main"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if err := local.Refs.Update("refs/heads/main", root, nil); err != nil {
		t.Fatalf("seed local main: %v", err)
	}

	tip := commitFile(t, local, "a.txt", "v2\n", "second")

	pushed, written, err := Push(local.Store, local.Refs, remote, "main")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if pushed != tip {
		t.Fatalf("pushed = %s, want %s", pushed, tip)
	}
	if written == 0 {
		t.Fatal("expected Push to have written at least one object")
	}

	remoteHash, err := origin.Refs.Resolve("refs/heads/main", true)
	if err != nil {
		t.Fatalf("resolve remote main: %v", err)
	}
	if remoteHash != tip {
		t.Fatalf("remote main = %s, want %s", remoteHash, tip)
	}
}

func TestPushRejectsNonFastForward(t *testing.T) {
	origin := newRepo(t)
	root := commitFile(t, origin, "a.txt", "v1\n", "first")
	originOnly := commitFile(t, origin, "a.txt", "v2-from-origin\n", "origin-only change")
	_ = originOnly

	local := newRepo(t)
	if err := local.Refs.Update("refs/heads/main", root, nil); err != nil {
		t.Fatalf("seed local main: %v", err)
	}
	commitFile(t, local, "a.txt", "v2-from-local\n", "local-only change")

	remote := Open(origin.Dir)
	_, _, err := Push(local.Store, local.Refs, remote, "main")
	if !errors.Is(err, ErrNonFastForward) {
		t.Fatalf("Push err = %v, want ErrNonFastForward", err)
	}
}

func TestReachableSetWalksCommitTreeAndBlobs(t *testing.T) {
	e := newRepo(t)
	commitFile(t, e, "a.txt", "v1\n", "first")
	tip := commitFile(t, e, "a.txt", "v2\n", "second")

	reachable, err := ReachableSet(e.Store, []object.Hash{tip})
	if err != nil {
		t.Fatalf("ReachableSet: %v", err)
	}
	if _, ok := reachable[tip]; !ok {
		t.Fatal("expected the tip commit to be reachable from itself")
	}
	if len(reachable) < 4 {
		t.Fatalf("len(reachable) = %d, want at least 4 (2 commits, 2 trees, blobs)", len(reachable))
	}
}

func TestCollectObjectsForPushExcludesStopSet(t *testing.T) {
	e := newRepo(t)
	base := commitFile(t, e, "a.txt", "v1\n", "first")
	tip := commitFile(t, e, "a.txt", "v2\n", "second")

	objects, err := CollectObjectsForPush(e.Store, []object.Hash{tip}, []object.Hash{base})
	if err != nil {
		t.Fatalf("CollectObjectsForPush: %v", err)
	}
	for _, rec := range objects {
		if rec.Hash == base {
			t.Fatalf("expected the stop-set base commit to be excluded from the push payload")
		}
	}
	found := false
	for _, rec := range objects {
		if rec.Hash == tip {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the tip commit to be included in the push payload")
	}
}
