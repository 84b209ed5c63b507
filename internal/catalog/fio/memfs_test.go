package fio

import (
	"io"
	"os"
	"testing"
)

func TestMemFSCreateAndOpenRoundTrip(t *testing.T) {
	m := NewMemFS()
	w, err := m.Create("/a/b/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := m.Open("/a/b/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}
}

func TestMemFSOpenMissingReturnsNotExist(t *testing.T) {
	m := NewMemFS()
	_, err := m.Open("/nope")
	if !os.IsNotExist(err) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemFSCreateExclusiveFailsIfExists(t *testing.T) {
	m := NewMemFS()
	w, err := m.CreateExclusive("/lock")
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	_, err = m.CreateExclusive("/lock")
	if !os.IsExist(err) {
		t.Errorf("expected ErrExist, got %v", err)
	}
}

func TestMemFSRenameMovesData(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/src", []byte("payload"))
	if err := m.Rename("/src", "/dst"); err != nil {
		t.Fatal(err)
	}
	if m.Exists("/src") {
		t.Error("source should no longer exist")
	}
	data, err := m.Open("/dst")
	if err != nil {
		t.Fatal(err)
	}
	defer data.Close()
	got, _ := io.ReadAll(data)
	if string(got) != "payload" {
		t.Errorf("got %q", got)
	}
}

func TestMemFSReadDirListsFilesAndSubdirs(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/root/a.txt", []byte("x"))
	m.WriteFile("/root/b.txt", []byte("yy"))
	if err := m.MkdirAll("/root/sub", 0700); err != nil {
		t.Fatal(err)
	}

	entries, err := m.ReadDir("/root")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Name != "a.txt" || entries[0].IsDir {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[2].Name != "sub" || !entries[2].IsDir {
		t.Errorf("unexpected last entry: %+v", entries[2])
	}
}

func TestMemFSDirEmpty(t *testing.T) {
	m := NewMemFS()
	if err := m.MkdirAll("/empty", 0700); err != nil {
		t.Fatal(err)
	}
	empty, err := m.DirEmpty("/empty")
	if err != nil {
		t.Fatal(err)
	}
	if !empty {
		t.Error("expected /empty to be empty")
	}

	m.WriteFile("/empty/f", []byte("x"))
	empty, err = m.DirEmpty("/empty")
	if err != nil {
		t.Fatal(err)
	}
	if empty {
		t.Error("expected /empty to be non-empty after write")
	}
}

func TestHostFromEnvDefaultsToLocal(t *testing.T) {
	if HostFromEnv(func(string) string { return "" }) != HostLocal {
		t.Error("empty env should select HostLocal")
	}
	if HostFromEnv(func(string) string { return "local" }) != HostLocal {
		t.Error("\"local\" should select HostLocal")
	}
	if HostFromEnv(func(string) string { return "agent1" }) != HostRemote {
		t.Error("non-local value should select HostRemote")
	}
}
