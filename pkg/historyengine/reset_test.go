package historyengine

import "testing"

func TestResetSoftMovesHeadOnly(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "v1\n")
	stage(t, e, "a.txt")
	first := commit(t, e, "first")
	writeFile(t, e, "a.txt", "v2\n")
	stage(t, e, "a.txt")
	commit(t, e, "second")

	if err := e.Reset(first, ResetSoft); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	head, err := e.headCommit()
	if err != nil {
		t.Fatalf("headCommit: %v", err)
	}
	if head != first {
		t.Fatalf("HEAD = %s, want %s", head, first)
	}

	idx, err := e.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, ok := idx.Get("a.txt"); !ok {
		t.Fatal("expected a.txt still staged at v2's hash")
	}

	data, err := e.WT.ReadFile("a.txt")
	if err != nil || string(data) != "v2\n" {
		t.Fatalf("working tree should be untouched by a soft reset: a.txt = %q, %v", data, err)
	}
}

func TestResetMixedReloadsIndexOnly(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "v1\n")
	stage(t, e, "a.txt")
	first := commit(t, e, "first")
	writeFile(t, e, "a.txt", "v2\n")
	stage(t, e, "a.txt")
	commit(t, e, "second")

	if err := e.Reset(first, ResetMixed); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	idx, err := e.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	entry, ok := idx.Get("a.txt")
	if !ok {
		t.Fatal("expected a.txt to be present in the reloaded index")
	}
	firstCommit, err := e.Store.GetCommit(first)
	if err != nil {
		t.Fatalf("GetCommit: %v", err)
	}
	firstTree, err := e.Store.GetTree(firstCommit.TreeHash)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if firstTree.Entries[0].Hash != entry.Oid {
		t.Fatalf("index entry oid = %s, want %s", entry.Oid, firstTree.Entries[0].Hash)
	}

	data, err := e.WT.ReadFile("a.txt")
	if err != nil || string(data) != "v2\n" {
		t.Fatalf("working tree should be untouched by a mixed reset: a.txt = %q, %v", data, err)
	}
}

func TestResetHardRewritesWorkingTree(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "v1\n")
	stage(t, e, "a.txt")
	first := commit(t, e, "first")
	writeFile(t, e, "a.txt", "v2\n")
	stage(t, e, "a.txt")
	commit(t, e, "second")

	if err := e.Reset(first, ResetHard); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	data, err := e.WT.ReadFile("a.txt")
	if err != nil || string(data) != "v1\n" {
		t.Fatalf("a.txt = %q, %v, want reverted to v1", data, err)
	}

	head, err := e.headCommit()
	if err != nil {
		t.Fatalf("headCommit: %v", err)
	}
	if head != first {
		t.Fatalf("HEAD = %s, want %s", head, first)
	}
}
