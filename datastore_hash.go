package redisdns

// HSet writes field to val in the hash at key, creating the hash if
// absent. It always returns 1, per this server's simplified contract
// (spec does not require distinguishing create from update).
func (d *Datastore) HSet(key, field string, val []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, ok := d.hashes[key]
	if !ok {
		delete(d.strings, key)
		delete(d.lists, key)
		h = make(map[string][]byte)
		d.hashes[key] = h
	}
	h[field] = val
	d.touch(key)
	d.checkAndEvict()
	return 1
}

// HMSet writes each field/value pair in fields to the hash at key,
// creating it if absent.
func (d *Datastore) HMSet(key string, fields map[string][]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, ok := d.hashes[key]
	if !ok {
		delete(d.strings, key)
		delete(d.lists, key)
		h = make(map[string][]byte)
		d.hashes[key] = h
	}
	for field, val := range fields {
		h[field] = val
	}
	d.touch(key)
	d.checkAndEvict()
}

// HGet returns the value of field in the hash at key.
func (d *Datastore) HGet(key, field string) (val []byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return nil, false
	}
	val, ok = h[field]
	d.touch(key)
	return val, ok
}

// HExists reports whether field exists in the hash at key.
func (d *Datastore) HExists(key, field string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return false
	}
	_, ok := h[field]
	d.touch(key)
	return ok
}

// HDel removes field from the hash at key, returning 1 if it was present.
// Emptying the hash deletes key (empty collection collapse).
func (d *Datastore) HDel(key, field string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return 0
	}
	if _, ok := h[field]; !ok {
		d.touch(key)
		return 0
	}
	delete(h, field)
	if len(h) == 0 {
		d.deleteKey(key)
	} else {
		d.touch(key)
	}
	return 1
}

// HGetAll returns the fields and values of the hash at key as two parallel
// slices: values[i] is the value of fields[i].
func (d *Datastore) HGetAll(key string) (fields, values [][]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return nil, nil
	}
	for f, v := range h {
		fields = append(fields, []byte(f))
		values = append(values, v)
	}
	d.touch(key)
	return fields, values
}

// HKeys returns the field names of the hash at key.
func (d *Datastore) HKeys(key string) [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return nil
	}
	keys := make([][]byte, 0, len(h))
	for f := range h {
		keys = append(keys, []byte(f))
	}
	d.touch(key)
	return keys
}

// HVals returns the values of the hash at key.
func (d *Datastore) HVals(key string) [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return nil
	}
	vals := make([][]byte, 0, len(h))
	for _, v := range h {
		vals = append(vals, v)
	}
	d.touch(key)
	return vals
}

// HLen returns the number of fields in the hash at key, or 0 if missing
// or expired.
func (d *Datastore) HLen(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics.commands.Add(1)

	d.purgeExpired(key)
	h, present := d.hashes[key]
	if !present {
		return 0
	}
	d.touch(key)
	return len(h)
}
