// Package cache provides LRU caching of analysis results with disk persistence.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrKeyNotFound is returned when a key is not found in the cache.
var ErrKeyNotFound = errors.New("key not found")

// Result is a cached analysis outcome for one contract: the serialized
// graph document plus enough metadata to answer listing queries without
// deserializing.
type Result struct {
	ContractName    string `msgpack:"contract_name"`
	SolidityVersion string `msgpack:"solidity_version"`
	OutputMode      string `msgpack:"output_mode"`
	Document        []byte `msgpack:"document"`
	NodeCount       int    `msgpack:"node_count"`
	EdgeCount       int    `msgpack:"edge_count"`
}

// Key derives a cache key from the source content and the analysis
// parameters that affect the output.
func Key(source []byte, contractName, outputMode, version string) string {
	h := sha256.New()
	h.Write(source)
	fmt.Fprintf(h, "|%s|%s|%s", contractName, outputMode, version)
	return hex.EncodeToString(h.Sum(nil))
}

// Entry represents a cache entry with metadata.
type Entry struct {
	Key        string    `msgpack:"key"`
	Result     *Result   `msgpack:"result"`
	AccessedAt time.Time `msgpack:"accessed_at"`
	CreatedAt  time.Time `msgpack:"created_at"`
	Size       int       `msgpack:"size"` // estimated size in bytes
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list is a doubly-linked list with the most recent item at the front.
type list struct {
	head *listItem
	tail *listItem
	len  int
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}

	if item.prev != nil {
		item.prev.next = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	}
	if item == l.tail {
		l.tail = item.prev
	}

	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item

	if l.tail == nil {
		l.tail = item
	}
}

func (l *list) removeBack() *listItem {
	if l.tail == nil {
		return nil
	}

	item := l.tail
	l.tail = item.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.len--
	return item
}

func (l *list) pushFront(item *listItem) {
	item.next = l.head
	item.prev = nil
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

// Options configures the result cache.
type Options struct {
	// MaxEntries is the maximum number of cached results. 0 means unlimited.
	MaxEntries int

	// MaxBytes is the approximate maximum document size in bytes.
	// 0 means unlimited.
	MaxBytes int64

	// OnEvict is called when an entry is evicted.
	OnEvict func(key string, result *Result)
}

// ResultCache is an in-memory LRU cache of analysis results with
// optional msgpack disk persistence.
type ResultCache struct {
	mu           sync.RWMutex
	items        map[string]*listItem
	lru          *list
	maxEntries   int
	maxBytes     int64
	currentBytes int64
	onEvict      func(key string, result *Result)
	hitCount     int64
	missCount    int64
}

// New creates a new result cache with the given options.
func New(opts Options) *ResultCache {
	return &ResultCache{
		items:      make(map[string]*listItem),
		lru:        &list{},
		maxEntries: opts.MaxEntries,
		maxBytes:   opts.MaxBytes,
		onEvict:    opts.OnEvict,
	}
}

// Get retrieves a result by key.
func (c *ResultCache) Get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		c.missCount++
		return nil, false
	}

	c.hitCount++
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Result, true
}

// Set stores a result in the cache, evicting least recently used
// entries when limits are exceeded.
func (c *ResultCache) Set(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := estimateSize(result)

	if item, exists := c.items[key]; exists {
		c.currentBytes -= int64(item.Size)
		item.Result = result
		item.Size = size
		item.AccessedAt = time.Now()
		c.currentBytes += int64(size)
		c.lru.moveToFront(item)
		c.evictIfNeeded()
		return
	}

	item := &listItem{
		Entry: Entry{
			Key:        key,
			Result:     result,
			AccessedAt: time.Now(),
			CreatedAt:  time.Now(),
			Size:       size,
		},
	}

	c.items[key] = item
	c.lru.pushFront(item)
	c.currentBytes += int64(size)

	c.evictIfNeeded()
}

// Delete removes a key from the cache.
func (c *ResultCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return
	}

	if item.prev != nil {
		item.prev.next = item.next
	} else {
		c.lru.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		c.lru.tail = item.prev
	}
	c.lru.len--

	delete(c.items, key)
	c.currentBytes -= int64(item.Size)

	if c.onEvict != nil {
		c.onEvict(key, item.Result)
	}
}

// Clear removes all entries from the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	c.currentBytes = 0
}

// Len returns the number of entries in the cache.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CurrentBytes returns the approximate current size in bytes.
func (c *ResultCache) CurrentBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentBytes
}

func (c *ResultCache) evictIfNeeded() {
	for c.shouldEvict() {
		item := c.lru.removeBack()
		if item == nil {
			break
		}
		delete(c.items, item.Key)
		c.currentBytes -= int64(item.Size)

		if c.onEvict != nil {
			c.onEvict(item.Key, item.Result)
		}
	}
}

func (c *ResultCache) shouldEvict() bool {
	if c.maxEntries > 0 && c.lru.len > c.maxEntries {
		return true
	}
	if c.maxBytes > 0 && c.currentBytes >= c.maxBytes {
		return true
	}
	return false
}

// Save persists the cache to a writer using msgpack. Entries are
// written most recently used first.
func (c *ResultCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.items))
	for item := c.lru.head; item != nil; item = item.next {
		entries = append(entries, item.Entry)
	}

	enc := msgpack.NewEncoder(w)
	return enc.Encode(entries)
}

// Load restores the cache from a reader using msgpack, replacing any
// existing entries.
func (c *ResultCache) Load(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []Entry
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	c.currentBytes = 0

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		item := &listItem{Entry: entry}
		c.items[entry.Key] = item
		c.lru.pushFront(item)
		c.currentBytes += int64(entry.Size)
	}

	return nil
}

// Stats holds cache hit/miss statistics.
type Stats struct {
	Length       int   `json:"length"`
	CurrentBytes int64 `json:"current_bytes"`
	HitCount     int64 `json:"hit_count"`
	MissCount    int64 `json:"miss_count"`
}

// Stats returns the current cache statistics.
func (c *ResultCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Length:       len(c.items),
		CurrentBytes: c.currentBytes,
		HitCount:     c.hitCount,
		MissCount:    c.missCount,
	}
}

// HitRate returns the cache hit rate.
func (c *ResultCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hitCount + c.missCount
	if total == 0 {
		return 0
	}
	return float64(c.hitCount) / float64(total)
}

// estimateSize estimates the size of a result in bytes.
func estimateSize(r *Result) int {
	if r == nil {
		return 0
	}
	return len(r.Document) + len(r.ContractName) + len(r.SolidityVersion) + len(r.OutputMode) + 16
}

// Store is a disk-backed result cache. Results are kept in an in-memory
// LRU and persisted to a single msgpack file under the cache directory.
type Store struct {
	dir   string
	cache *ResultCache
}

const persistFileName = "results.msgpack"

// NewStore creates a disk-backed store rooted at dir, loading any
// previously persisted entries. A missing cache file is not an error.
func NewStore(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	s := &Store{
		dir:   dir,
		cache: New(opts),
	}

	f, err := os.Open(s.persistPath())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	if err := s.cache.Load(f); err != nil {
		// A corrupt cache file is discarded rather than fatal.
		s.cache.Clear()
	}
	return s, nil
}

func (s *Store) persistPath() string {
	return filepath.Join(s.dir, persistFileName)
}

// Get retrieves a result by key.
func (s *Store) Get(key string) (*Result, bool) {
	return s.cache.Get(key)
}

// Put stores a result by key.
func (s *Store) Put(key string, result *Result) {
	s.cache.Set(key, result)
}

// Flush persists the in-memory cache to disk.
func (s *Store) Flush() error {
	f, err := os.Create(s.persistPath())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	return s.cache.Save(f)
}

// Clear empties the store and removes the persisted file.
func (s *Store) Clear() error {
	s.cache.Clear()
	if err := os.Remove(s.persistPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Stats returns hit/miss statistics for the underlying cache.
func (s *Store) Stats() Stats {
	return s.cache.Stats()
}
