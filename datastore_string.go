package redisdns

import "time"

// Set writes key to val in the string store. A ttl > 0 sets an
// expiration; ttl == 0 clears any TTL key previously had. Any existing
// list or hash entry for key is removed first, preserving type
// exclusivity.
func (d *Datastore) Set(key string, val []byte, ttl time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	delete(d.lists, key)
	delete(d.hashes, key)
	d.strings[key] = val
	d.apc.SetTTL(key, ttl)
	d.touch(key)
	d.checkAndEvict()
}

// Get returns the string value stored at key. ok is false if key is
// absent, expired, or not a string.
func (d *Datastore) Get(key string) (val []byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	val, ok = d.strings[key]
	if ok {
		d.touch(key)
	}
	return val, ok
}
