package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj — spec §6: ordered entries "<kind> <name>\0<binary-oid>", sorted
// by name.
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name for
// deterministic output. Sorting does not remove duplicate names: every
// entry is written, so callers must not construct duplicates.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	for _, e := range sorted {
		buf.WriteString(string(e.Kind))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		raw, err := hex.DecodeString(string(e.Hash))
		if err != nil {
			// Hashes are always produced by HashObject/HashBytes; a bad
			// hex string here means a caller built a TreeEntry by hand.
			panic(fmt.Sprintf("object: tree entry %q has non-hex hash %q", e.Name, e.Hash))
		}
		buf.Write(raw)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		sp := bytes.IndexByte(data, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry (no kind separator)")
		}
		kind := EntryKind(data[:sp])
		if kind != KindBlob && kind != KindTree {
			return nil, fmt.Errorf("unmarshal tree: unknown entry kind %q", kind)
		}
		rest := data[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry (no name terminator)")
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < sha256Size {
			return nil, fmt.Errorf("unmarshal tree: truncated oid for %q", name)
		}
		h := Hash(hex.EncodeToString(rest[:sha256Size]))
		data = rest[sha256Size:]

		tr.Entries = append(tr.Entries, TreeEntry{Kind: kind, Name: name, Hash: h})
	}
	return tr, nil
}

const sha256Size = 32

// ---------------------------------------------------------------------------
// CommitObj — spec §6:
//
//	tree <64hex>\n
//	parent <64hex>\n            (zero or more, in order)
//	author <name> <email> <epoch> <tz>\n
//	committer <name> <email> <epoch> <tz>\n
//	\n
//	<message bytes>
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj. Author/committer lines follow the
// "name <email> epoch tz" shape (unambiguous even when name contains
// spaces, since email is angle-bracketed).
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", formatIdentity(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatIdentity(c.Committer))
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

func formatIdentity(id Identity) string {
	return fmt.Sprintf("%s <%s> %d %s", id.Name, id.Email, id.Epoch, id.Zone)
}

var identityLineRE = regexp.MustCompile(`^(.*) <(.*)> (-?\d+) ([+-]\d{4})?$`)

func parseIdentity(line string) (Identity, error) {
	m := identityLineRE.FindStringSubmatch(line)
	if m == nil {
		return Identity{}, fmt.Errorf("malformed identity %q", line)
	}
	epoch, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("malformed identity epoch %q: %w", m[3], err)
	}
	return Identity{Name: m[1], Email: m[2], Epoch: epoch, Zone: m[4]}, nil
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	if header == "" {
		return nil, fmt.Errorf("unmarshal commit: empty header")
	}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			id, err := parseIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = id
		case "committer":
			id, err := parseIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = id
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}
