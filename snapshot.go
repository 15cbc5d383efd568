package redisdns

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Dump writes a textual, line-oriented snapshot of every non-expired key
// to w. TTLs and APC metadata are not persisted, matching spec.md
// §4.3.5; a key loaded back in always starts with no TTL. Records are
// terminated by a single real newline, resolving the two-byte-literal
// inconsistency the original implementation had.
func (d *Datastore) Dump(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	bw := bufio.NewWriter(w)
	for key, val := range d.strings {
		if d.apc.Expired(key) {
			continue
		}
		if err := writeRecord(bw, "K", key, val); err != nil {
			return err
		}
	}
	for key, elems := range d.lists {
		if d.apc.Expired(key) {
			continue
		}
		if err := writeRecord(bw, "L", key, elems...); err != nil {
			return err
		}
	}
	for key, fields := range d.hashes {
		if d.apc.Expired(key) {
			continue
		}
		flat := make([][]byte, 0, len(fields)*2)
		for f, v := range fields {
			flat = append(flat, []byte(f), v)
		}
		if err := writeRecord(bw, "H", key, flat...); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load replaces the datastore's contents with the snapshot read from r.
// It clears all three stores and the APC first, then replays each record
// through the same Set/RPush/HSet paths the wire protocol uses, so
// loaded keys pick up capacity enforcement exactly as live traffic would.
func (d *Datastore) Load(r io.Reader) error {
	d.mu.Lock()
	d.strings = make(map[string][]byte)
	d.lists = make(map[string][][]byte)
	d.hashes = make(map[string]map[string][]byte)
	d.apc.Clear()
	d.mu.Unlock()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := d.loadRecord(line); err != nil {
			return errors.Wrapf(err, "snapshot line %d", lineNo)
		}
	}
	return scanner.Err()
}

func (d *Datastore) loadRecord(line []byte) error {
	fields := bytes.Fields(line)
	if len(fields) < 2 {
		return NewProtocolError("malformed snapshot record")
	}
	key, err := base64.StdEncoding.DecodeString(string(fields[1]))
	if err != nil {
		return errors.Wrap(err, "decoding key")
	}
	rest := fields[2:]

	switch string(fields[0]) {
	case "K":
		if len(rest) != 1 {
			return NewProtocolError("malformed string record")
		}
		val, err := base64.StdEncoding.DecodeString(string(rest[0]))
		if err != nil {
			return errors.Wrap(err, "decoding value")
		}
		d.Set(string(key), val, 0)
	case "L":
		for _, tok := range rest {
			elem, err := base64.StdEncoding.DecodeString(string(tok))
			if err != nil {
				return errors.Wrap(err, "decoding element")
			}
			d.RPush(string(key), elem)
		}
	case "H":
		if len(rest)%2 != 0 {
			return NewProtocolError("malformed hash record")
		}
		for i := 0; i < len(rest); i += 2 {
			field, err := base64.StdEncoding.DecodeString(string(rest[i]))
			if err != nil {
				return errors.Wrap(err, "decoding field")
			}
			val, err := base64.StdEncoding.DecodeString(string(rest[i+1]))
			if err != nil {
				return errors.Wrap(err, "decoding value")
			}
			d.HSet(string(key), string(field), val)
		}
	default:
		return NewProtocolError("unknown record type")
	}
	return nil
}

func writeRecord(w *bufio.Writer, tag, key string, fields ...[]byte) error {
	if _, err := w.WriteString(tag); err != nil {
		return err
	}
	if err := writeB64Field(w, []byte(key)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := writeB64Field(w, f); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func writeB64Field(w *bufio.Writer, b []byte) error {
	if _, err := w.WriteString(" "); err != nil {
		return err
	}
	_, err := w.WriteString(base64.StdEncoding.EncodeToString(b))
	return err
}

// DumpToFile writes the snapshot to path, truncating any existing file.
// A straight open-truncate-write is sufficient here; atomic replacement
// via a temp file plus rename is not required by this core.
func (d *Datastore) DumpToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating snapshot file")
	}
	defer f.Close()
	return d.Dump(f)
}

// LoadFromFile loads the snapshot at path. A missing or corrupt file is
// non-fatal: the caller should treat any returned error as "start empty"
// per spec.md §7's snapshot-error policy.
func (d *Datastore) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening snapshot file")
	}
	defer f.Close()
	return d.Load(f)
}
