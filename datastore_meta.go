package redisdns

import "time"

// Del removes key from all three stores and from the APC, returning true
// if anything was actually removed. UNLINK is an alias with identical
// semantics in this server; there is no deferred-reclaim distinction.
func (d *Datastore) Del(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	return d.deleteKey(key)
}

// Type reports key's current type family as "string", "list", "hash", or
// "none".
func (d *Datastore) Type(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	family := d.familyOf(key)
	if family != familyNone {
		d.touch(key)
	}
	switch family {
	case familyString:
		return "string"
	case familyList:
		return "list"
	case familyHash:
		return "hash"
	default:
		return "none"
	}
}

// Expire sets key's TTL to sec seconds. sec == 0 deletes key immediately.
// It returns ErrKeyNotFound if key exists in none of the three stores and
// has no APC record.
func (d *Datastore) Expire(key string, sec int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	if d.familyOf(key) == familyNone && !d.apc.Contains(key) {
		return ErrKeyNotFound
	}
	if sec <= 0 {
		d.deleteKey(key)
		return nil
	}
	d.apc.SetTTL(key, time.Duration(sec)*time.Second)
	d.touch(key)
	return nil
}

// Rename moves the value at old to new, replacing new if it already
// exists, and transfers old's APC stats to new. It returns
// ErrKeyNotFound if old is missing or has just expired.
func (d *Datastore) Rename(old, new string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(old)
	family := d.familyOf(old)
	if family == familyNone {
		return ErrKeyNotFound
	}
	if new != old {
		d.deleteKey(new)
		switch family {
		case familyString:
			d.strings[new] = d.strings[old]
			delete(d.strings, old)
		case familyList:
			d.lists[new] = d.lists[old]
			delete(d.lists, old)
		case familyHash:
			d.hashes[new] = d.hashes[old]
			delete(d.hashes, old)
		}
	}
	d.apc.transferStats(old, new)
	return nil
}

// Keys returns every non-expired key across the three stores, in no
// particular order. It is a debug command; callers must not rely on
// ordering.
func (d *Datastore) Keys() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	keys := make([][]byte, 0, d.size())
	for k := range d.strings {
		if !d.apc.Expired(k) {
			keys = append(keys, []byte(k))
			d.touch(k)
		}
	}
	for k := range d.lists {
		if !d.apc.Expired(k) {
			keys = append(keys, []byte(k))
			d.touch(k)
		}
	}
	for k := range d.hashes {
		if !d.apc.Expired(k) {
			keys = append(keys, []byte(k))
			d.touch(k)
		}
	}
	return keys
}

// FlushAll clears all three stores and the APC.
func (d *Datastore) FlushAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.strings = make(map[string][]byte)
	d.lists = make(map[string][][]byte)
	d.hashes = make(map[string]map[string][]byte)
	d.apc.Clear()
}
