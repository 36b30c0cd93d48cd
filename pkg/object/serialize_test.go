package object

import (
	"reflect"
	"testing"
)

func TestTreeRoundTrip(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Kind: KindBlob, Name: "b.txt", Hash: HashBytes([]byte("b"))},
		{Kind: KindTree, Name: "a-dir", Hash: HashBytes([]byte("dir"))},
		{Kind: KindBlob, Name: "a.txt", Hash: HashBytes([]byte("a"))},
	}}

	data := MarshalTree(tr)
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(got.Entries))
	}
	// MarshalTree sorts by name.
	wantOrder := []string{"a-dir", "a.txt", "b.txt"}
	for i, name := range wantOrder {
		if got.Entries[i].Name != name {
			t.Errorf("entry[%d].Name = %q, want %q", i, got.Entries[i].Name, name)
		}
	}
}

func TestTreeEmptyRoundTrip(t *testing.T) {
	data := MarshalTree(&TreeObj{})
	if len(data) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(data))
	}
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(got.Entries))
	}
}

func TestCommitRoundTrip(t *testing.T) {
	c := &CommitObj{
		TreeHash: HashBytes([]byte("tree")),
		Parents:  []Hash{HashBytes([]byte("p1")), HashBytes([]byte("p2"))},
		Author:   Identity{Name: "Ada Lovelace", Email: "ada@example.com", Epoch: 1700000000, Zone: "-0500"},
		Committer: Identity{
			Name: "Ada Lovelace", Email: "ada@example.com", Epoch: 1700000001, Zone: "-0500",
		},
		Message: "a commit message\n\nwith a body\n",
	}
	data := MarshalCommit(c)
	got, err := UnmarshalCommit(data)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", got, c)
	}
}

func TestCommitRootHasNoParents(t *testing.T) {
	c := &CommitObj{
		TreeHash: HashBytes([]byte("tree")),
		Author:   Identity{Name: "A", Email: "a@example.com", Epoch: 1, Zone: "+0000"},
		Message:  "root\n",
	}
	data := MarshalCommit(c)
	got, err := UnmarshalCommit(data)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if len(got.Parents) != 0 {
		t.Errorf("got %d parents, want 0", len(got.Parents))
	}
}
