package embedding

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache("")
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len: got %d", c.Len())
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := NewCache("")
	c.Set("a", []float32{1, 2})
	v, _ := c.Get("a")
	v[0] = 99
	again, _ := c.Get("a")
	if again[0] != 1 {
		t.Errorf("cached value was mutated through Get: %v", again)
	}
}

func TestCache_persistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "embeddings.gob")
	c := NewCache(path)
	c.Set("golang developer", []float32{0.6, 0.8})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	reopened := NewCache(path)
	v, ok := reopened.Get("golang developer")
	if !ok || len(v) != 2 || v[1] != 0.8 {
		t.Errorf("reopened cache: got %v, %v", v, ok)
	}
	if reopened.Path() != path {
		t.Errorf("Path: got %q", reopened.Path())
	}
}

func TestCache_corruptFileYieldsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewCache(path)
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	c.Set("x", []float32{1})
	if _, ok := NewCache(path).Get("x"); !ok {
		t.Error("cache should overwrite a corrupt file on the next write")
	}
}

func TestCache_unwritablePathIsSilent(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewCache(filepath.Join(blocker, "embeddings.gob"))
	c.Set("a", []float32{1})
	if _, ok := c.Get("a"); !ok {
		t.Error("in-memory entry should survive a failed flush")
	}
}

func TestCacheKey(t *testing.T) {
	if CacheKey("a") != CacheKey("a") {
		t.Error("CacheKey should be deterministic")
	}
	if CacheKey("a") == CacheKey("b") {
		t.Error("different texts should have different keys")
	}
	if len(CacheKey("")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(CacheKey("")))
	}
}
