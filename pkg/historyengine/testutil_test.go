package historyengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/graft/pkg/object"
)

var testCommitter = object.Identity{Name: "Ada", Email: "ada@example.com", Epoch: 1000, Zone: "+0000"}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	root := t.TempDir()
	e, err := Init(root, "main")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return e
}

func writeFile(t *testing.T, e *Engine, path, content string) {
	t.Helper()
	abs := filepath.Join(e.Root, path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func stage(t *testing.T, e *Engine, path string) {
	t.Helper()
	idx, err := e.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	hash, err := e.WT.WriteBlob(e.Store, path)
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	idx.Stage(path, hash)
	if err := e.SaveIndex(idx); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
}

func commit(t *testing.T, e *Engine, message string) object.Hash {
	t.Helper()
	hash, err := e.Commit(message, testCommitter)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash
}
