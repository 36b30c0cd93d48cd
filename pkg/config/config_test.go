package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User.Name != "" || len(cfg.Remotes) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := empty()
	if err := cfg.SetUser("Ada Lovelace", "ada@example.com"); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if err := cfg.SetRemote("origin", "/srv/repos/upstream"); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.User.Name != "Ada Lovelace" || loaded.User.Email != "ada@example.com" {
		t.Fatalf("user = %+v", loaded.User)
	}
	url, err := loaded.RemoteURL("origin")
	if err != nil || url != "/srv/repos/upstream" {
		t.Fatalf("RemoteURL = %q, %v", url, err)
	}
}

func TestSetUserRejectsEmpty(t *testing.T) {
	cfg := empty()
	if err := cfg.SetUser("", "ada@example.com"); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestRemoveRemote(t *testing.T) {
	cfg := empty()
	_ = cfg.SetRemote("origin", "/srv/repo")
	if err := cfg.RemoveRemote("origin"); err != nil {
		t.Fatalf("RemoveRemote: %v", err)
	}
	if _, err := cfg.RemoteURL("origin"); err == nil {
		t.Fatal("expected error after remote removed")
	}
}

func TestRemoteURLUnconfigured(t *testing.T) {
	cfg := empty()
	if _, err := cfg.RemoteURL("origin"); err == nil {
		t.Fatal("expected error for unconfigured remote")
	}
}
