package redisdns

import (
	"expvar"
	"sync"
)

// Datastore is the single, process-wide key-value store: three typed key
// spaces (string, list, hash) sharing one capacity bound and one APC
// instance. Every public operation acquires mu for its full duration. Dump
// is the only method that performs I/O while holding it, so a snapshot sees
// one point in time; Load takes mu only to clear the stores and then
// replays records through the locking Set/RPush/HSet methods.
type Datastore struct {
	mu sync.Mutex

	strings map[string][]byte
	lists   map[string][][]byte
	hashes  map[string]map[string][]byte

	apc          *APC
	maxCacheSize int

	metrics *datastoreMetrics
}

type datastoreMetrics struct {
	commands *expvar.Int
}

// NewDatastore creates an empty Datastore bounded to maxCacheSize total
// keys across its three stores. A maxCacheSize <= 0 means unbounded.
func NewDatastore(maxCacheSize int) *Datastore {
	return &Datastore{
		strings:      make(map[string][]byte),
		lists:        make(map[string][][]byte),
		hashes:       make(map[string]map[string][]byte),
		apc:          NewAPC("default"),
		maxCacheSize: maxCacheSize,
		metrics: &datastoreMetrics{
			commands: getVarInt("datastore", "default", "commands"),
		},
	}
}

// APC exposes the datastore's cache engine, mainly for tests and metrics
// introspection; callers outside this package should not mutate it
// directly, only read scores through it.
func (d *Datastore) APC() *APC { return d.apc }

// size returns the total number of first-class keys across all three
// stores. Caller must hold d.mu.
func (d *Datastore) size() int {
	return len(d.strings) + len(d.lists) + len(d.hashes)
}

// purgeExpired deletes key from every store and from the APC if its TTL
// has elapsed. Caller must hold d.mu. Returns true if key was purged.
func (d *Datastore) purgeExpired(key string) bool {
	if !d.apc.Expired(key) {
		return false
	}
	d.deleteKey(key)
	return true
}

// deleteKey removes key from all three stores and from the APC. Caller
// must hold d.mu.
func (d *Datastore) deleteKey(key string) bool {
	_, inStrings := d.strings[key]
	_, inLists := d.lists[key]
	_, inHashes := d.hashes[key]
	delete(d.strings, key)
	delete(d.lists, key)
	delete(d.hashes, key)
	d.apc.RemoveKey(key)
	return inStrings || inLists || inHashes
}

// checkAndEvict enforces the capacity bound after a mutation that may
// have grown the key set. Caller must hold d.mu.
func (d *Datastore) checkAndEvict() {
	if d.maxCacheSize <= 0 {
		return
	}
	for d.size() > d.maxCacheSize {
		key, ok := d.apc.EvictCandidate()
		if ok {
			d.deleteKey(key)
			continue
		}
		// No APC record exists at all (shouldn't normally happen once any
		// key has been touched); fall back to an arbitrary key, preferring
		// strings, then lists, then hashes.
		if k := anyKey(d.strings); k != "" {
			d.deleteKey(k)
			continue
		}
		if k := anyKeyList(d.lists); k != "" {
			d.deleteKey(k)
			continue
		}
		if k := anyKeyHash(d.hashes); k != "" {
			d.deleteKey(k)
			continue
		}
		break // stores are empty; nothing left to evict
	}
}

func anyKey(m map[string][]byte) string {
	for k := range m {
		return k
	}
	return ""
}

func anyKeyList(m map[string][][]byte) string {
	for k := range m {
		return k
	}
	return ""
}

func anyKeyHash(m map[string]map[string][]byte) string {
	for k := range m {
		return k
	}
	return ""
}

// keyFamily reports which type family key currently belongs to.
type keyFamily int

const (
	familyNone keyFamily = iota
	familyString
	familyList
	familyHash
)

// familyOf returns key's current type family. Caller must hold d.mu.
func (d *Datastore) familyOf(key string) keyFamily {
	if _, ok := d.strings[key]; ok {
		return familyString
	}
	if _, ok := d.lists[key]; ok {
		return familyList
	}
	if _, ok := d.hashes[key]; ok {
		return familyHash
	}
	return familyNone
}

// touch records an access for key via the APC. Caller must hold d.mu.
func (d *Datastore) touch(key string) {
	d.apc.RecordAccess(key)
}
