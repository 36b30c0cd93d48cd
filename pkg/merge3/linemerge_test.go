package merge3

import (
	"strings"
	"testing"
)

func TestMergeTextCleanWhenOnlyOneSideChanges(t *testing.T) {
	base := []byte("a\nb\nc\n")
	ours := []byte("a\nb\nc\n")
	theirs := []byte("a\nX\nc\n")

	res := MergeText(base, ours, theirs)
	if res.HasConflict {
		t.Fatalf("unexpected conflict: %s", res.Merged)
	}
	if string(res.Merged) != "a\nX\nc\n" {
		t.Fatalf("merged = %q", res.Merged)
	}
}

func TestMergeTextConflictIncludesBaseSection(t *testing.T) {
	base := []byte("a\nb\nc\n")
	ours := []byte("a\nOURS\nc\n")
	theirs := []byte("a\nTHEIRS\nc\n")

	res := MergeText(base, ours, theirs)
	if !res.HasConflict {
		t.Fatalf("expected conflict, got clean merge: %s", res.Merged)
	}
	merged := string(res.Merged)
	for _, marker := range []string{"<<<<<<< HEAD", "||||||| BASE", "=======", ">>>>>>> MERGE_HEAD"} {
		if !strings.Contains(merged, marker) {
			t.Errorf("merged output missing marker %q:\n%s", marker, merged)
		}
	}
	if !strings.Contains(merged, "OURS") || !strings.Contains(merged, "THEIRS") || !strings.Contains(merged, "b") {
		t.Errorf("merged output missing a side's content:\n%s", merged)
	}
}

func TestMergeTextIdenticalChangeIsClean(t *testing.T) {
	base := []byte("a\nb\nc\n")
	ours := []byte("a\nSAME\nc\n")
	theirs := []byte("a\nSAME\nc\n")

	res := MergeText(base, ours, theirs)
	if res.HasConflict {
		t.Fatalf("unexpected conflict: %s", res.Merged)
	}
	if string(res.Merged) != "a\nSAME\nc\n" {
		t.Fatalf("merged = %q", res.Merged)
	}
}
