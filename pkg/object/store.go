package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get when no object exists for a hash.
var ErrNotFound = errors.New("object: not found")

// ErrCorrupt is returned by Get when the on-disk frame fails to
// decompress, has no type/payload separator, or its hash does not match
// its content.
var ErrCorrupt = errors.New("object: corrupt")

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each stored object is framed as
// "<kind>\0<payload>" and zstd-compressed (spec §4.1).
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores an object and returns its content hash. Put is idempotent:
// writing an already-present oid is a no-op, and concurrent Put of the
// same oid is safe because both writers produce byte-identical content
// (spec §4.1, §5).
func (s *Store) Put(objType ObjectType, data []byte) (Hash, error) {
	h := HashObject(objType, data)
	if s.Has(h) {
		return h, nil
	}

	frame := make([]byte, 0, len(objType)+1+len(data))
	frame = append(frame, objType...)
	frame = append(frame, 0)
	frame = append(frame, data...)

	compressed, err := compressZstd(frame)
	if err != nil {
		return "", fmt.Errorf("object put %s: compress: %w", h, err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object put %s: mkdir: %w", h, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object put %s: tmpfile: %w", h, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object put %s: write: %w", h, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object put %s: close: %w", h, err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object put %s: rename: %w", h, err)
	}
	return h, nil
}

// Get retrieves an object by hash, returning its type and payload.
func (s *Store) Get(h Hash) (ObjectType, []byte, error) {
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object get %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object get %s: %w", h, err)
	}

	frame, err := decompressZstd(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object get %s: decompress: %w", h, ErrCorrupt)
	}

	nulIdx := bytes.IndexByte(frame, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object get %s: missing frame separator: %w", h, ErrCorrupt)
	}
	objType := ObjectType(frame[:nulIdx])
	payload := frame[nulIdx+1:]

	if HashObject(objType, payload) != h {
		return "", nil, fmt.Errorf("object get %s: hash mismatch: %w", h, ErrCorrupt)
	}

	return objType, payload, nil
}

// IterAll visits every hash present in the store, in no particular order.
// Returning an error from fn stops iteration and that error is returned.
func (s *Store) IterAll(fn func(Hash) error) error {
	objRoot := filepath.Join(s.root, "objects")
	fanouts, err := os.ReadDir(objRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("object iter: %w", err)
	}
	for _, fo := range fanouts {
		if !fo.IsDir() {
			continue
		}
		rest, err := os.ReadDir(filepath.Join(objRoot, fo.Name()))
		if err != nil {
			return fmt.Errorf("object iter: %w", err)
		}
		for _, r := range rest {
			if r.IsDir() {
				continue
			}
			h := Hash(fo.Name() + r.Name())
			if err := fn(h); err != nil {
				return err
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) PutBlob(b *Blob) (Hash, error) {
	return s.Put(TypeBlob, MarshalBlob(b))
}

func (s *Store) GetBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

func (s *Store) PutTree(tr *TreeObj) (Hash, error) {
	return s.Put(TypeTree, MarshalTree(tr))
}

func (s *Store) GetTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

func (s *Store) PutCommit(c *CommitObj) (Hash, error) {
	return s.Put(TypeCommit, MarshalCommit(c))
}

func (s *Store) GetCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}
