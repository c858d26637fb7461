package cache

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(name string, docLen int) *Result {
	return &Result{
		ContractName:    name,
		SolidityVersion: "0.4.x",
		OutputMode:      "standard",
		Document:        bytes.Repeat([]byte("x"), docLen),
		NodeCount:       docLen,
	}
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key([]byte("contract C {}"), "C", "standard", "0.4.x")
	k2 := Key([]byte("contract C {}"), "C", "standard", "0.4.x")
	assert.Equal(t, k1, k2)

	assert.NotEqual(t, k1, Key([]byte("contract C { }"), "C", "standard", "0.4.x"))
	assert.NotEqual(t, k1, Key([]byte("contract C {}"), "C", "compact", "0.4.x"))
	assert.NotEqual(t, k1, Key([]byte("contract C {}"), "C", "standard", "0.8.x"))
	assert.Len(t, k1, 64)
}

func TestResultCache_Basic(t *testing.T) {
	c := New(Options{MaxEntries: 3})

	c.Set("a", result("A", 10))
	c.Set("b", result("B", 10))
	assert.Equal(t, 2, c.Len())

	got, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "A", got.ContractName)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestResultCache_LRUEviction(t *testing.T) {
	c := New(Options{MaxEntries: 3})

	c.Set("a", result("A", 10))
	c.Set("b", result("B", 10))
	c.Set("c", result("C", 10))

	// Access 'a' to make it most recently used
	c.Get("a")

	// Adding a fourth entry evicts 'b'
	c.Set("d", result("D", 10))

	assert.Equal(t, 3, c.Len())

	_, found := c.Get("b")
	assert.False(t, found, "b should have been evicted")
	_, found = c.Get("a")
	assert.True(t, found, "a should still be present")
	_, found = c.Get("d")
	assert.True(t, found, "d should be present")
}

func TestResultCache_ByteEviction(t *testing.T) {
	c := New(Options{MaxBytes: 100})

	c.Set("a", result("A", 60))
	c.Set("b", result("B", 60))

	// Both entries together exceed the byte limit; the older one is evicted.
	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("b")
	assert.True(t, found)
}

func TestResultCache_Delete(t *testing.T) {
	c := New(Options{MaxEntries: 10})
	c.Set("a", result("A", 10))

	c.Delete("a")
	assert.Equal(t, 0, c.Len())

	_, found := c.Get("a")
	assert.False(t, found)

	// Deleting a missing key is a no-op.
	c.Delete("a")
}

func TestResultCache_OnEvict(t *testing.T) {
	evicted := map[string]string{}
	c := New(Options{
		MaxEntries: 1,
		OnEvict: func(key string, r *Result) {
			evicted[key] = r.ContractName
		},
	})

	c.Set("a", result("A", 10))
	c.Set("b", result("B", 10))

	assert.Equal(t, map[string]string{"a": "A"}, evicted)
}

func TestResultCache_UpdateExisting(t *testing.T) {
	c := New(Options{MaxEntries: 10})
	c.Set("a", result("A", 10))
	c.Set("a", result("A2", 20))

	assert.Equal(t, 1, c.Len())
	got, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "A2", got.ContractName)
}

func TestResultCache_SaveLoad(t *testing.T) {
	c := New(Options{MaxEntries: 10})
	c.Set("a", result("A", 10))
	c.Set("b", result("B", 20))
	c.Get("a") // make 'a' most recently used

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(Options{MaxEntries: 10})
	require.NoError(t, restored.Load(&buf))

	assert.Equal(t, 2, restored.Len())
	got, found := restored.Get("b")
	require.True(t, found)
	assert.Equal(t, "B", got.ContractName)
	assert.Equal(t, 20, len(got.Document))
}

func TestResultCache_LoadPreservesLRUOrder(t *testing.T) {
	c := New(Options{MaxEntries: 10})
	c.Set("old", result("Old", 10))
	c.Set("new", result("New", 10))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(Options{MaxEntries: 2})
	require.NoError(t, restored.Load(&buf))

	// A new entry should push out the least recently used one.
	restored.Set("extra", result("Extra", 10))
	restored.Set("extra2", result("Extra2", 10))

	_, found := restored.Get("old")
	assert.False(t, found, "oldest restored entry should evict first")
}

func TestResultCache_Stats(t *testing.T) {
	c := New(Options{MaxEntries: 10})
	c.Set("a", result("A", 10))

	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.InDelta(t, 2.0/3.0, c.HitRate(), 1e-9)
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, Options{MaxEntries: 10})
	require.NoError(t, err)

	key := Key([]byte("contract C {}"), "C", "standard", "0.4.x")
	s.Put(key, result("C", 30))
	require.NoError(t, s.Flush())

	reopened, err := NewStore(dir, Options{MaxEntries: 10})
	require.NoError(t, err)

	got, found := reopened.Get(key)
	require.True(t, found)
	assert.Equal(t, "C", got.ContractName)
	assert.Equal(t, 30, len(got.Document))
}

func TestStore_MissingFileOK(t *testing.T) {
	s, err := NewStore(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, s.cache.Len())
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, Options{})
	require.NoError(t, err)

	s.Put("k", result("C", 10))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Clear())

	_, found := s.Get("k")
	assert.False(t, found)

	reopened, err := NewStore(dir, Options{})
	require.NoError(t, err)
	_, found = reopened.Get("k")
	assert.False(t, found)
}

func TestResultCache_ManyEntries(t *testing.T) {
	c := New(Options{MaxEntries: 100})
	for i := 0; i < 250; i++ {
		c.Set(fmt.Sprintf("key_%d", i), result(fmt.Sprintf("C%d", i), 5))
	}
	assert.Equal(t, 100, c.Len())

	// The most recent 100 survive.
	_, found := c.Get("key_249")
	assert.True(t, found)
	_, found = c.Get("key_0")
	assert.False(t, found)
}
