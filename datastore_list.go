package redisdns

import "bytes"

// LLen returns the length of the list stored at key, or 0 if key is
// missing or expired.
func (d *Datastore) LLen(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, ok := d.lists[key]
	if !ok {
		return 0
	}
	d.touch(key)
	return len(l)
}

// LPush prepends val to the list at key, creating it if absent, and
// returns the new length.
func (d *Datastore) LPush(key string, val []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, existed := d.lists[key]
	if !existed {
		delete(d.strings, key)
		delete(d.hashes, key)
	}
	l = append([][]byte{val}, l...)
	d.lists[key] = l
	d.touch(key)
	d.checkAndEvict()
	return len(l)
}

// RPush appends val to the list at key, creating it if absent, and
// returns the new length.
func (d *Datastore) RPush(key string, val []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, existed := d.lists[key]
	if !existed {
		delete(d.strings, key)
		delete(d.hashes, key)
	}
	l = append(l, val)
	d.lists[key] = l
	d.touch(key)
	d.checkAndEvict()
	return len(l)
}

// LPop removes and returns the head of the list at key. ok is false if
// the list is missing, expired, or empty. Popping the last element
// deletes key (empty collection collapse).
func (d *Datastore) LPop(key string) (val []byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, present := d.lists[key]
	if !present || len(l) == 0 {
		return nil, false
	}
	val = l[0]
	l = l[1:]
	if len(l) == 0 {
		d.deleteKey(key)
	} else {
		d.lists[key] = l
		d.touch(key)
	}
	return val, true
}

// RPop removes and returns the tail of the list at key, with the same
// empty-collection-collapse behavior as LPop.
func (d *Datastore) RPop(key string) (val []byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, present := d.lists[key]
	if !present || len(l) == 0 {
		return nil, false
	}
	last := len(l) - 1
	val = l[last]
	l = l[:last]
	if len(l) == 0 {
		d.deleteKey(key)
	} else {
		d.lists[key] = l
		d.touch(key)
	}
	return val, true
}

// LRem removes elements equal to val from the list at key: all of them if
// count == 0, up to count from the head if count > 0, or up to |count|
// from the tail if count < 0. It returns the number removed. Emptying
// the list deletes key.
func (d *Datastore) LRem(key string, count int, val []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, present := d.lists[key]
	if !present {
		return 0
	}

	var kept [][]byte
	removed := 0
	switch {
	case count == 0:
		for _, e := range l {
			if bytes.Equal(e, val) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
	case count > 0:
		for _, e := range l {
			if removed < count && bytes.Equal(e, val) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
	default:
		limit := -count
		for i := len(l) - 1; i >= 0; i-- {
			e := l[i]
			if removed < limit && bytes.Equal(e, val) {
				removed++
				continue
			}
			kept = append([][]byte{e}, kept...)
		}
	}

	if removed == 0 {
		d.touch(key)
		return 0
	}
	if len(kept) == 0 {
		d.deleteKey(key)
	} else {
		d.lists[key] = kept
		d.touch(key)
	}
	return removed
}

// LIndex returns the element at index i, resolving negative indices from
// the tail. ok is false if key is missing/expired or i is out of range.
func (d *Datastore) LIndex(key string, i int) (val []byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, present := d.lists[key]
	if !present {
		return nil, false
	}
	idx, ok := resolveListIndex(len(l), i)
	if !ok {
		return nil, false
	}
	d.touch(key)
	return l[idx], true
}

// LSet writes val at index i, resolving negative indices from the tail.
// It returns ErrKeyNotFound if key is missing/expired and
// ErrIndexOutOfRange if i is out of bounds.
func (d *Datastore) LSet(key string, i int, val []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	l, present := d.lists[key]
	if !present {
		return ErrKeyNotFound
	}
	idx, ok := resolveListIndex(len(l), i)
	if !ok {
		return ErrIndexOutOfRange
	}
	l[idx] = val
	d.touch(key)
	return nil
}

// resolveListIndex maps a possibly-negative logical index against a list
// of the given length to a non-negative slice index.
func resolveListIndex(length, i int) (int, bool) {
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}
