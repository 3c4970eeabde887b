package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/marincop/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("openai", "gpt-4o-mini", "extract", "text")
	b := CacheKey("openai", "gpt-4o-mini", "extract", "text")
	c := CacheKey("openai", "gpt-4o-mini", "extracttext")

	if a != b {
		t.Error("expected stable keys")
	}
	if a == c {
		t.Error("expected part boundaries to matter")
	}
	if !strings.HasPrefix(a, "marincop:v1:") {
		t.Errorf("unexpected prefix: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("expected hit, got %q %v", got, ok)
	}

	_ = c.Set("short", []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("expected expiry")
	}

	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("x")

	if err := c.Set(key, []byte(`{"ok":true}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != `{"ok":true}` {
		t.Errorf("expected hit, got %q %v", got, ok)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the entry file, got %d files", len(entries))
	}

	_ = c.Set(key, []byte("old"), -time.Second)
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}

	if err := os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_ = c.Set(key, []byte("v"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after clear")
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); err != nil {
		t.Error("clear must only remove cache entries")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("corrupt")

	if err := os.WriteFile(c.path(key), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss on corrupt entry")
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(c.path(key)))); !os.IsNotExist(err) {
		t.Error("expected corrupt entry removed")
	}
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("v"), 0)

	lc := &Layered{memory: NewMemoryCache(time.Minute, time.Minute), disk: disk}
	if got, ok := lc.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("expected disk hit, got %q %v", got, ok)
	}
	if _, ok := lc.memory.Get("k"); !ok {
		t.Error("expected promotion to memory")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(model.CacheConfig{Enabled: false}).(NopCache); !ok {
		t.Error("expected no-op cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a dir")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*Layered); !ok {
		t.Error("expected layered cache with a dir")
	}
}
