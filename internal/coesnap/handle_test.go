package coesnap

import (
	"os"
	"testing"
)

func TestProvider_Acquire_ClearsMissingLocalPath(t *testing.T) {
	p := NewProvider()

	h := p.Acquire(Entry{ID: "1", Name: "widgets", LocalPath: "/no/such/directory"})

	if h.LocalPath() != "" {
		t.Errorf("LocalPath() = %q, want empty for a non-existent directory", h.LocalPath())
	}
}

func TestProvider_Acquire_KeepsValidLocalPath(t *testing.T) {
	p := NewProvider()
	dir := t.TempDir()

	h := p.Acquire(Entry{ID: "1", Name: "widgets", LocalPath: dir})

	if h.LocalPath() != dir {
		t.Errorf("LocalPath() = %q, want %q", h.LocalPath(), dir)
	}
}

func TestProvider_Acquire_RejectsFileAsLocalPath(t *testing.T) {
	p := NewProvider()
	dir := t.TempDir()
	file := dir + "/not-a-dir"
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := p.Acquire(Entry{ID: "1", Name: "widgets", LocalPath: file})

	if h.LocalPath() != "" {
		t.Errorf("LocalPath() = %q, want empty when the path names a file", h.LocalPath())
	}
}

func TestWithHandle_ClearsCacheOnExit(t *testing.T) {
	p := NewProvider()
	var captured *RepoHandle

	err := WithHandle(p, Entry{ID: "1", Name: "widgets"}, func(h *RepoHandle) error {
		captured = h
		_, _ = h.CacheGetOrCompute("k", func() (any, error) { return 42, nil })
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.cache != nil {
		t.Error("expected cache to be dropped after scope exit")
	}
}

func TestWithHandle_RecoversPanic(t *testing.T) {
	p := NewProvider()

	err := WithHandle(p, Entry{ID: "1", Name: "widgets"}, func(h *RepoHandle) error {
		panic("boom")
	})

	if err == nil {
		t.Fatal("expected an error recovered from the panic")
	}
}
