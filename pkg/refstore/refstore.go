// Package refstore implements the reference store (spec §4.2): a mapping
// from ref name to either a direct oid or a symbolic pointer at another ref
// name, with compare-and-set updates and a reflog.
//
// Grounded on the teacher's pkg/repo/init.go (lockfile CAS), refs.go
// (listing), branch.go/tag.go (ref namespaces), and reflog.go (append-only
// history), generalised from "HEAD is the only symbolic ref" to arbitrary
// symbolic chains with cycle detection, per spec §4.2's explicit "detect
// cycles (bounded depth)" requirement.
package refstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/graft/pkg/object"
)

// ErrCASMismatch is returned by Update when expectedOld does not match the
// ref's current value.
var ErrCASMismatch = errors.New("refstore: compare-and-set mismatch")

// ErrNotFound is returned when a ref does not exist.
var ErrNotFound = errors.New("refstore: ref not found")

// ErrSymbolicCycle is returned when resolving a symbolic ref chain exceeds
// the bounded depth without terminating.
var ErrSymbolicCycle = errors.New("refstore: symbolic ref cycle")

const maxSymbolicDepth = 32

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Store is a reference store rooted at a repository's metadata directory
// (e.g. ".R/"). Ref names are either root-level special names (HEAD,
// MERGE_HEAD, ORIG_HEAD, CHERRY_PICK_HEAD) or slash-namespaced paths
// (refs/heads/<n>, refs/tags/<n>, refs/remote/<r>/<n>).
type Store struct {
	root string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// raw reads a ref file's trimmed content. Returns ErrNotFound wrapped if
// missing.
func (s *Store) raw(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("refstore: read %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("refstore: read %q: %w", name, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// rawOptional is like raw but returns ("", false, nil) instead of an error
// when the ref does not exist — used by callers (e.g. CAS) for whom a
// missing ref just means "old value is empty".
func (s *Store) rawOptional(name string) (string, bool, error) {
	content, err := s.raw(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return content, true, nil
}

const symbolicPrefix = "ref: "

// ResolveOne reads name's content and reports whether it is a symbolic
// pointer. If symbolic, target is the pointee ref name (unresolved). If
// direct, hash is the stored oid.
func (s *Store) ResolveOne(name string) (hash object.Hash, symbolic bool, target string, err error) {
	content, err := s.raw(name)
	if err != nil {
		return "", false, "", err
	}
	if strings.HasPrefix(content, symbolicPrefix) {
		return "", true, strings.TrimSpace(strings.TrimPrefix(content, symbolicPrefix)), nil
	}
	return object.Hash(content), false, "", nil
}

// Resolve follows symbolic chains to a terminal oid when deref is true,
// detecting cycles within maxSymbolicDepth hops (spec §4.2). When deref is
// false, Resolve returns the oid of a direct ref and an error for a
// symbolic ref — callers that need the raw one-level view (including the
// pointee name) should use ResolveOne instead.
func (s *Store) Resolve(name string, deref bool) (object.Hash, error) {
	cur := name
	seen := map[string]bool{}
	for depth := 0; depth < maxSymbolicDepth; depth++ {
		if seen[cur] {
			return "", fmt.Errorf("refstore: resolve %q: %w", name, ErrSymbolicCycle)
		}
		seen[cur] = true

		hash, symbolic, target, err := s.ResolveOne(cur)
		if err != nil {
			return "", fmt.Errorf("refstore: resolve %q: %w", name, err)
		}
		if !symbolic {
			return hash, nil
		}
		if !deref {
			return "", fmt.Errorf("refstore: resolve %q: %s is symbolic (pointing at %s)", name, cur, target)
		}
		cur = target
	}
	return "", fmt.Errorf("refstore: resolve %q: %w", name, ErrSymbolicCycle)
}

// terminalName follows symbolic chains and returns the first non-symbolic
// ref name in the chain (the ref that actually needs to be written by an
// Update targeting `name`). This implements "updates to HEAD when HEAD is
// symbolic transparently update the pointee" (spec §4.2) generically for
// any symbolic ref, not just HEAD.
func (s *Store) terminalName(name string) (string, error) {
	cur := name
	seen := map[string]bool{}
	for depth := 0; depth < maxSymbolicDepth; depth++ {
		if seen[cur] {
			return "", fmt.Errorf("refstore: %w", ErrSymbolicCycle)
		}
		seen[cur] = true

		_, symbolic, target, err := s.ResolveOne(cur)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// A not-yet-existing ref is its own terminal: there is
				// nothing to dereference.
				return cur, nil
			}
			return "", err
		}
		if !symbolic {
			return cur, nil
		}
		cur = target
	}
	return "", fmt.Errorf("refstore: %w", ErrSymbolicCycle)
}

// SymRef makes name a symbolic ref pointing at target (e.g. HEAD -> refs/heads/main).
func (s *Store) SymRef(name, target string) error {
	if err := os.MkdirAll(filepath.Dir(s.path(name)), 0o755); err != nil {
		return fmt.Errorf("refstore: symref %q: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), []byte(symbolicPrefix+target+"\n"), 0o644); err != nil {
		return fmt.Errorf("refstore: symref %q: %w", name, err)
	}
	return nil
}

// Update performs an unconditional (or CAS, if expectedOld is non-nil)
// update of name to newHash. If name resolves through a symbolic chain
// (e.g. HEAD -> refs/heads/main), the terminal ref is the one actually
// written. Update is lockfile-guarded (exclusive create + rename) and
// appends a reflog entry for the written ref.
func (s *Store) Update(name string, newHash object.Hash, expectedOld *object.Hash) error {
	target, err := s.terminalName(name)
	if err != nil {
		return fmt.Errorf("refstore: update %q: %w", name, err)
	}

	refPath := s.path(target)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("refstore: update %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("refstore: update %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldContent, existed, err := s.rawOptional(target)
	if err != nil {
		return fmt.Errorf("refstore: update %q: read old: %w", name, err)
	}
	oldHash := object.Hash(oldContent)
	if strings.HasPrefix(oldContent, symbolicPrefix) {
		return fmt.Errorf("refstore: update %q: %q is symbolic, expected a direct ref", name, target)
	}
	if expectedOld != nil {
		want := *expectedOld
		have := oldHash
		if !existed {
			have = ""
		}
		if have != want {
			return fmt.Errorf("refstore: update %q: %w (expected %s, found %s)", name, ErrCASMismatch, want, have)
		}
	}

	if _, err := lockFile.WriteString(string(newHash) + "\n"); err != nil {
		return fmt.Errorf("refstore: update %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("refstore: update %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("refstore: update %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("refstore: update %q: rename: %w", name, err)
	}
	cleanupLock = false

	if err := s.appendReflog(target, oldHash, newHash, "update"); err != nil {
		return &ReflogAppendError{Ref: target, OldHash: oldHash, NewHash: newHash, Err: err}
	}
	return nil
}

// Delete removes a ref file. Missing refs are not an error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("refstore: delete %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a ref file is present (direct or symbolic).
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// List returns every direct ref under prefix (e.g. "refs/heads"), resolved
// to its oid, keyed by full ref name.
func (s *Store) List(prefix string) (map[string]object.Hash, error) {
	dir := s.path(prefix)
	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(p, ".lock") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		hash, err := s.Resolve(name, false)
		if err != nil {
			return fmt.Errorf("list refs: %s: %w", name, err)
		}
		refs[name] = hash
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refstore: list %q: %w", prefix, err)
	}
	return refs, nil
}

func acquireLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

// ReflogAppendError indicates the ref file update itself succeeded, but the
// corresponding reflog append failed. The ref mutation is not rolled back.
type ReflogAppendError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *ReflogAppendError) Error() string {
	return fmt.Sprintf("refstore: ref %q updated (old=%s new=%s) but reflog append failed: %v",
		e.Ref, e.OldHash, e.NewHash, e.Err)
}

func (e *ReflogAppendError) Unwrap() error { return e.Err }
