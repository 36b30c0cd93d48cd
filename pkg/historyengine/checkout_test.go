package historyengine

import "testing"

func TestCheckoutBranchLeavesHeadSymbolic(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "v1\n")
	stage(t, e, "a.txt")
	root := commit(t, e, "root")

	if err := e.Refs.Update("refs/heads/feature", root, nil); err != nil {
		t.Fatalf("create feature: %v", err)
	}
	writeFile(t, e, "a.txt", "on-main\n")
	stage(t, e, "a.txt")
	commit(t, e, "on main")

	result, err := e.Checkout("feature")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if result.Detached {
		t.Fatal("expected a branch checkout, not detached HEAD")
	}
	if result.Branch != "feature" {
		t.Fatalf("Branch = %q, want %q", result.Branch, "feature")
	}
	if result.Commit != root {
		t.Fatalf("Commit = %s, want %s", result.Commit, root)
	}

	_, symbolic, target, err := e.Refs.ResolveOne("HEAD")
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	if !symbolic || target != "refs/heads/feature" {
		t.Fatalf("HEAD = (symbolic=%v, target=%q), want symbolic refs/heads/feature", symbolic, target)
	}

	data, err := e.WT.ReadFile("a.txt")
	if err != nil || string(data) != "v1\n" {
		t.Fatalf("a.txt = %q, %v, want working tree swapped to feature's content", data, err)
	}
}

func TestCheckoutRawHashDetachesHead(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "v1\n")
	stage(t, e, "a.txt")
	first := commit(t, e, "first")
	writeFile(t, e, "a.txt", "v2\n")
	stage(t, e, "a.txt")
	commit(t, e, "second")

	result, err := e.Checkout(string(first))
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if !result.Detached {
		t.Fatal("expected a detached HEAD checkout")
	}
	if result.Commit != first {
		t.Fatalf("Commit = %s, want %s", result.Commit, first)
	}

	_, symbolic, _, err := e.Refs.ResolveOne("HEAD")
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	if symbolic {
		t.Fatal("expected HEAD to no longer be symbolic after a raw-hash checkout")
	}

	data, err := e.WT.ReadFile("a.txt")
	if err != nil || string(data) != "v1\n" {
		t.Fatalf("a.txt = %q, %v, want working tree reverted to first's content", data, err)
	}
}

func TestCheckoutUnknownTargetFails(t *testing.T) {
	e := newTestEngine(t)
	writeFile(t, e, "a.txt", "v1\n")
	stage(t, e, "a.txt")
	commit(t, e, "root")

	if _, err := e.Checkout("does-not-exist"); err == nil {
		t.Fatal("expected an error checking out an unknown branch/commit")
	}
}
