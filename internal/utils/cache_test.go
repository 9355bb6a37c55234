package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	if !exists {
		t.Error("expected key1 to exist")
	}
	if value != 42 {
		t.Errorf("expected value 42, got %d", value)
	}

	if _, exists = cache.Get("nonexistent"); exists {
		t.Error("expected nonexistent key to not exist")
	}

	cache.Delete("key1")
	if _, exists = cache.Get("key1"); exists {
		t.Error("expected key1 to be deleted")
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %+v", stats)
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	cache := NewCache[string, string]()
	calls := 0

	compute := func() (string, error) {
		calls++
		return "computed", nil
	}

	for i := 0; i < 3; i++ {
		value, err := cache.GetOrCompute("k", compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "computed" {
			t.Errorf("expected computed, got %q", value)
		}
	}
	if calls != 1 {
		t.Errorf("expected compute to run once, ran %d times", calls)
	}

	_, err := cache.GetOrCompute("bad", func() (string, error) { return "", fmt.Errorf("boom") })
	if err == nil {
		t.Error("expected compute error to be returned")
	}
	if _, exists := cache.Get("bad"); exists {
		t.Error("failed computations must not be cached")
	}
}

func TestCache_DeleteFunc(t *testing.T) {
	type key struct {
		name       string
		generation uint64
	}
	cache := NewCache[key, int]()
	cache.Set(key{"a", 1}, 1)
	cache.Set(key{"b", 1}, 2)
	cache.Set(key{"a", 2}, 3)

	removed := cache.DeleteFunc(func(k key) bool { return k.generation < 2 })
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if cache.Size() != 1 {
		t.Errorf("expected 1 remaining, got %d", cache.Size())
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache[string, string]()

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")

	if cache.Size() != 2 {
		t.Errorf("expected size 2, got %d", cache.Size())
	}

	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", cache.Size())
	}
	if len(cache.Keys()) != 0 {
		t.Error("expected no keys after clear")
	}
}

func TestCache_FileValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	if err := os.WriteFile(path, []byte("package a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache[string, string]()
	if err := cache.SetWithFileInfo(path, "v1", path); err != nil {
		t.Fatalf("SetWithFileInfo: %v", err)
	}

	if value, ok := cache.GetWithFileValidation(path, path); !ok || value != "v1" {
		t.Fatalf("expected cached v1, got %q (%v)", value, ok)
	}

	later := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("package a\n\nvar X = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	if _, ok := cache.GetWithFileValidation(path, path); ok {
		t.Error("expected entry to be invalidated after the file changed")
	}
	if cache.Size() != 0 {
		t.Error("invalidated entry should be removed")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache[int, int]()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set(n*100+j, j)
				cache.Get(n*100 + j)
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() != 1600 {
		t.Errorf("expected 1600 items, got %d", cache.Size())
	}
}
