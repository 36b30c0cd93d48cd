package refstore

import (
	"errors"
	"testing"

	"github.com/odvcencio/graft/pkg/object"
)

func hashes(s string) object.Hash { return object.Hash(s) }

func TestUpdateCreatesAndReadsDirectRef(t *testing.T) {
	s := New(t.TempDir())
	h := hashes("aaaa")

	if err := s.Update("refs/heads/main", h, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Resolve("refs/heads/main", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != h {
		t.Fatalf("got %s, want %s", got, h)
	}
}

func TestUpdateCASSucceedsWhenOldMatches(t *testing.T) {
	s := New(t.TempDir())
	first := hashes("aaaa")
	second := hashes("bbbb")

	if err := s.Update("refs/heads/main", first, nil); err != nil {
		t.Fatalf("Update (create): %v", err)
	}
	if err := s.Update("refs/heads/main", second, &first); err != nil {
		t.Fatalf("Update (CAS): %v", err)
	}
	got, err := s.Resolve("refs/heads/main", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != second {
		t.Fatalf("got %s, want %s", got, second)
	}
}

func TestUpdateCASMismatchIsRejected(t *testing.T) {
	s := New(t.TempDir())
	first := hashes("aaaa")
	wrongOld := hashes("cccc")
	second := hashes("bbbb")

	if err := s.Update("refs/heads/main", first, nil); err != nil {
		t.Fatalf("Update (create): %v", err)
	}
	err := s.Update("refs/heads/main", second, &wrongOld)
	if !errors.Is(err, ErrCASMismatch) {
		t.Fatalf("err = %v, want ErrCASMismatch", err)
	}

	got, err := s.Resolve("refs/heads/main", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != first {
		t.Fatalf("ref should be unchanged after a rejected CAS: got %s, want %s", got, first)
	}
}

func TestUpdateCASAgainstEmptyRequiresRefAbsent(t *testing.T) {
	s := New(t.TempDir())
	h := hashes("aaaa")
	empty := object.Hash("")

	if err := s.Update("refs/heads/main", h, &empty); err != nil {
		t.Fatalf("Update against empty on a nonexistent ref: %v", err)
	}
	if err := s.Update("refs/heads/main", hashes("bbbb"), &empty); !errors.Is(err, ErrCASMismatch) {
		t.Fatalf("err = %v, want ErrCASMismatch (ref already exists)", err)
	}
}

func TestSymRefUpdatesThroughToTerminalRef(t *testing.T) {
	s := New(t.TempDir())
	h := hashes("aaaa")

	if err := s.Update("refs/heads/main", h, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.SymRef("HEAD", "refs/heads/main"); err != nil {
		t.Fatalf("SymRef: %v", err)
	}

	got, err := s.Resolve("HEAD", true)
	if err != nil {
		t.Fatalf("Resolve HEAD: %v", err)
	}
	if got != h {
		t.Fatalf("HEAD resolved to %s, want %s", got, h)
	}

	newHash := hashes("bbbb")
	if err := s.Update("HEAD", newHash, &h); err != nil {
		t.Fatalf("Update through symbolic HEAD: %v", err)
	}
	got, err = s.Resolve("refs/heads/main", true)
	if err != nil {
		t.Fatalf("Resolve refs/heads/main: %v", err)
	}
	if got != newHash {
		t.Fatalf("refs/heads/main = %s, want %s (Update through HEAD should write the pointee)", got, newHash)
	}

	_, symbolic, target, err := s.ResolveOne("HEAD")
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	if !symbolic || target != "refs/heads/main" {
		t.Fatalf("HEAD should still be symbolic after Update, got symbolic=%v target=%q", symbolic, target)
	}
}

func TestResolveDetectsSymbolicCycle(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SymRef("refs/a", "refs/b"); err != nil {
		t.Fatalf("SymRef a->b: %v", err)
	}
	if err := s.SymRef("refs/b", "refs/a"); err != nil {
		t.Fatalf("SymRef b->a: %v", err)
	}

	_, err := s.Resolve("refs/a", true)
	if !errors.Is(err, ErrSymbolicCycle) {
		t.Fatalf("err = %v, want ErrSymbolicCycle", err)
	}
}

func TestResolveNonDerefReturnsErrorForSymbolicRef(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Update("refs/heads/main", hashes("aaaa"), nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.SymRef("HEAD", "refs/heads/main"); err != nil {
		t.Fatalf("SymRef: %v", err)
	}
	if _, err := s.Resolve("HEAD", false); err == nil {
		t.Fatal("expected a non-deref Resolve of a symbolic ref to fail")
	}
}

func TestBranchLifecycle(t *testing.T) {
	s := New(t.TempDir())
	root := hashes("aaaa")
	if err := s.Update("refs/heads/main", root, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.SymRef("HEAD", "refs/heads/main"); err != nil {
		t.Fatalf("SymRef: %v", err)
	}

	if err := s.CreateBranch("feature", root); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := s.CreateBranch("feature", root); err == nil {
		t.Fatal("expected CreateBranch to refuse an existing branch")
	}

	names, err := s.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(names) != 2 || names[0] != "feature" || names[1] != "main" {
		t.Fatalf("ListBranches = %v, want [feature main]", names)
	}

	current, err := s.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if current != "main" {
		t.Fatalf("CurrentBranch = %q, want %q", current, "main")
	}

	if err := s.DeleteBranch("main"); err == nil {
		t.Fatal("expected DeleteBranch to refuse deleting the current branch")
	}
	if err := s.DeleteBranch("feature"); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	names, err = s.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(names) != 1 || names[0] != "main" {
		t.Fatalf("ListBranches after delete = %v, want [main]", names)
	}
}

func TestTagLifecycle(t *testing.T) {
	s := New(t.TempDir())
	v1 := hashes("aaaa")
	v2 := hashes("bbbb")

	if err := s.CreateTag("v1", v1, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.CreateTag("v1", v2, false); err == nil {
		t.Fatal("expected CreateTag to refuse an existing tag without force")
	}
	if err := s.CreateTag("v1", v2, true); err != nil {
		t.Fatalf("CreateTag with force: %v", err)
	}

	got, err := s.ResolveTag("v1")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if got != v2 {
		t.Fatalf("ResolveTag = %s, want %s", got, v2)
	}

	if err := s.CreateTag("v0", v1, false); err != nil {
		t.Fatalf("CreateTag v0: %v", err)
	}
	names, err := s.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(names) != 2 || names[0] != "v0" || names[1] != "v1" {
		t.Fatalf("ListTags = %v, want [v0 v1]", names)
	}

	if err := s.DeleteTag("v0"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if _, err := s.ResolveTag("v0"); err == nil {
		t.Fatal("expected ResolveTag to fail after DeleteTag")
	}
}

func TestTagNameValidation(t *testing.T) {
	s := New(t.TempDir())
	if err := s.CreateTag("", hashes("aaaa"), false); err == nil {
		t.Fatal("expected an empty tag name to be rejected")
	}
	if err := s.CreateTag("../escape", hashes("aaaa"), false); err == nil {
		t.Fatal("expected a path-escaping tag name to be rejected")
	}
	if err := s.CreateTag("has space", hashes("aaaa"), false); err == nil {
		t.Fatal("expected a tag name with whitespace to be rejected")
	}
}

func TestReadReflogRecordsUpdatesNewestFirst(t *testing.T) {
	s := New(t.TempDir())
	first := hashes("aaaa")
	second := hashes("bbbb")

	if err := s.Update("refs/heads/main", first, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update("refs/heads/main", second, &first); err != nil {
		t.Fatalf("Update: %v", err)
	}

	entries, err := s.ReadReflog("refs/heads/main", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].NewHash != second || entries[0].OldHash != first {
		t.Fatalf("entries[0] = %+v, want newest update first", entries[0])
	}
	if entries[1].NewHash != first {
		t.Fatalf("entries[1] = %+v, want the original creation", entries[1])
	}

	limited, err := s.ReadReflog("refs/heads/main", 1)
	if err != nil {
		t.Fatalf("ReadReflog with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].NewHash != second {
		t.Fatalf("limited = %+v, want just the newest entry", limited)
	}
}

func TestListReturnsEmptyMapForMissingPrefix(t *testing.T) {
	s := New(t.TempDir())
	refs, err := s.List("refs/heads/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("List = %v, want empty", refs)
	}
}
