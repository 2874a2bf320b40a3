package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestStore_SetPersistsAndLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", credentialsFileName)

	s := New(path, nil)
	if err := s.Set("abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	other := New(path, nil)
	if err := other.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := other.Token(); got != "abc" {
		t.Errorf("Token = %q, want abc", got)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "none.json"), nil)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Token() != "" {
		t.Errorf("Token = %q, want empty", s.Token())
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), credentialsFileName)
	os.WriteFile(path, []byte("{not json"), 0o600)
	if err := New(path, nil).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore_SetRejectsEmpty(t *testing.T) {
	if err := New("", nil).Set(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestStore_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), credentialsFileName)
	s := New(path, nil)
	s.Set("abc")

	s.Clear()
	if s.Token() != "" {
		t.Errorf("Token = %q after Clear", s.Token())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("credentials file still present: %v", err)
	}
	s.Clear()
}

func TestStore_ConcurrentClearConverges(t *testing.T) {
	s := New("", nil)
	s.Set("abc")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Clear()
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
		}()
	}
	wg.Wait()

	if s.Token() != "" {
		t.Errorf("Token = %q, want empty", s.Token())
	}
}
