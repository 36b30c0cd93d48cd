package historyengine

import (
	"errors"
	"testing"
)

func TestCherryPickCleanApply(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "base\n")
	writeFile(t, e, "b.txt", "base\n")
	stage(t, e, "a.txt")
	stage(t, e, "b.txt")
	root := commit(t, e, "root")

	if err := e.Refs.Update("refs/heads/feature", root, nil); err != nil {
		t.Fatalf("create feature: %v", err)
	}
	if _, err := e.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	writeFile(t, e, "b.txt", "picked-change\n")
	stage(t, e, "b.txt")
	picked := commit(t, e, "feature change")

	if _, err := e.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	writeFile(t, e, "a.txt", "main-change\n")
	stage(t, e, "a.txt")
	commit(t, e, "main change")

	result, err := e.CherryPick(picked, testCommitter)
	if err != nil {
		t.Fatalf("CherryPick: %v", err)
	}
	if result.Skipped {
		t.Fatal("expected the cherry-pick to apply, not skip")
	}

	b, err := e.WT.ReadFile("b.txt")
	if err != nil || string(b) != "picked-change\n" {
		t.Fatalf("b.txt = %q, %v", b, err)
	}

	c, err := e.Store.GetCommit(result.Commit)
	if err != nil {
		t.Fatalf("GetCommit: %v", err)
	}
	if c.Message != "feature change" {
		t.Fatalf("message = %q, want preserved original message", c.Message)
	}
	if c.Author.Name != testCommitter.Name {
		t.Fatalf("author = %+v, want preserved original author", c.Author)
	}
	if len(c.Parents) != 1 {
		t.Fatalf("parents = %v, want exactly 1", c.Parents)
	}
}

func TestCherryPickSkipsEmptyChange(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "base\n")
	stage(t, e, "a.txt")
	root := commit(t, e, "root")

	if err := e.Refs.Update("refs/heads/feature", root, nil); err != nil {
		t.Fatalf("create feature: %v", err)
	}
	if _, err := e.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	writeFile(t, e, "a.txt", "changed\n")
	stage(t, e, "a.txt")
	picked := commit(t, e, "change a")

	if _, err := e.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	writeFile(t, e, "a.txt", "changed\n")
	stage(t, e, "a.txt")
	commit(t, e, "same change, made independently")

	result, err := e.CherryPick(picked, testCommitter)
	if err != nil {
		t.Fatalf("CherryPick: %v", err)
	}
	if !result.Skipped {
		t.Fatal("expected the cherry-pick to be skipped as empty")
	}
}

func TestCherryPickRejectsRootCommit(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "base\n")
	stage(t, e, "a.txt")
	root := commit(t, e, "root")

	if _, err := e.CherryPick(root, testCommitter); err == nil {
		t.Fatal("expected an error cherry-picking a root commit")
	}
}

func TestCherryPickConflictThenContinue(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "base\n")
	stage(t, e, "a.txt")
	root := commit(t, e, "root")

	if err := e.Refs.Update("refs/heads/feature", root, nil); err != nil {
		t.Fatalf("create feature: %v", err)
	}
	if _, err := e.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	writeFile(t, e, "a.txt", "feature-version\n")
	stage(t, e, "a.txt")
	picked := commit(t, e, "feature change")

	if _, err := e.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	writeFile(t, e, "a.txt", "main-version\n")
	stage(t, e, "a.txt")
	commit(t, e, "main change")

	_, err := e.CherryPick(picked, testCommitter)
	if !errors.Is(err, ErrCherryPickConflicts) {
		t.Fatalf("CherryPick err = %v, want ErrCherryPickConflicts", err)
	}

	idx, err := e.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if !idx.HasConflicts() {
		t.Fatal("expected the index to have a conflict")
	}

	writeFile(t, e, "a.txt", "resolved\n")
	hash, err := e.WT.WriteBlob(e.Store, "a.txt")
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	idx.Stage("a.txt", hash)
	if err := e.SaveIndex(idx); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	resultHash, err := e.CherryPickContinue(testCommitter)
	if err != nil {
		t.Fatalf("CherryPickContinue: %v", err)
	}
	c, err := e.Store.GetCommit(resultHash)
	if err != nil {
		t.Fatalf("GetCommit: %v", err)
	}
	if len(c.Parents) != 1 {
		t.Fatalf("parents = %v, want exactly 1", c.Parents)
	}
}

func TestCherryPickAbortRestoresHead(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "base\n")
	stage(t, e, "a.txt")
	root := commit(t, e, "root")

	if err := e.Refs.Update("refs/heads/feature", root, nil); err != nil {
		t.Fatalf("create feature: %v", err)
	}
	if _, err := e.Checkout("feature"); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}
	writeFile(t, e, "a.txt", "feature-version\n")
	stage(t, e, "a.txt")
	picked := commit(t, e, "feature change")

	if _, err := e.Checkout("main"); err != nil {
		t.Fatalf("checkout main: %v", err)
	}
	writeFile(t, e, "a.txt", "main-version\n")
	stage(t, e, "a.txt")
	mainTip := commit(t, e, "main change")

	_, err := e.CherryPick(picked, testCommitter)
	if !errors.Is(err, ErrCherryPickConflicts) {
		t.Fatalf("CherryPick err = %v, want ErrCherryPickConflicts", err)
	}

	if err := e.CherryPickAbort(); err != nil {
		t.Fatalf("CherryPickAbort: %v", err)
	}
	head, err := e.headCommit()
	if err != nil {
		t.Fatalf("headCommit: %v", err)
	}
	if head != mainTip {
		t.Fatalf("HEAD = %s, want %s", head, mainTip)
	}
}
