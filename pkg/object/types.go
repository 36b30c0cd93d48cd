package object

// Hash is a hex-encoded SHA-256 content digest. Object framing and hash
// width deliberately diverge from Git's 40-hex SHA-1 (see spec Non-goal:
// byte-identical Git compatibility) but the fan-out, framing, and
// content-addressing discipline are otherwise the same.
type Hash string

// ObjectType identifies the kind of object stored. Only blob, tree, and
// commit are standalone objects; tags are lightweight refs with no object
// of their own (spec §3).
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// EntryKind discriminates the two things a tree entry can name.
type EntryKind string

const (
	KindBlob EntryKind = "blob"
	KindTree EntryKind = "tree"
)

// Blob holds raw file content.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: (kind, name, oid). Names are
// unique within a tree (spec §3 invariant).
type TreeEntry struct {
	Kind EntryKind
	Name string
	Hash Hash
}

// TreeObj is an ordered sequence of entries, sorted by Name.
type TreeObj struct {
	Entries []TreeEntry
}

// Identity is an author or committer triple: name, email, and the moment
// the action was taken (epoch seconds + a signed zone offset like "+0000").
type Identity struct {
	Name  string
	Email string
	Epoch int64
	Zone  string
}

// CommitObj is a snapshot of a tree plus its ancestry and authorship.
// Parents is ordered; order is significant for LCA determinism (spec §9).
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Identity
	Committer Identity
	Message   string
}
