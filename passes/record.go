package passes

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is one annotated conversational sample, kept as its raw JSON object.
// Passes read and write it through dotted field paths (e.g. "safety.label");
// a record that a pass skips stays byte-for-byte identical.
type Record []byte

// ParsedUpdate maps a pass's field paths to the raw JSON values extracted from
// one model reply. An empty update means the reply carried nothing usable.
type ParsedUpdate map[string]json.RawMessage

// Get reads the value at a dotted path. ok is false when any path segment is
// absent, when an intermediate value is not an object, or when the leaf is an
// explicit null; a null never counts as a value for the satisfaction gate.
func (r Record) Get(path string) (gjson.Result, bool) {
	v := gjson.GetBytes(r, path)
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

// SetRaw writes a raw JSON value at a dotted path, creating intermediate
// objects as needed. The receiver is not mutated; the updated record is
// returned.
func (r Record) SetRaw(path string, raw json.RawMessage) (Record, error) {
	out, err := sjson.SetRawBytes(r, path, raw)
	if err != nil {
		return nil, fmt.Errorf("SetRaw: %s: %w", path, err)
	}
	return out, nil
}

// AlreadySatisfied reports whether every owned path already holds a non-null
// value. A single missing or null path makes the whole record eligible for
// reprocessing; the gate is all-or-nothing, not per-field.
func (r Record) AlreadySatisfied(ownedFields []string) bool {
	for _, path := range ownedFields {
		if _, ok := r.Get(path); !ok {
			return false
		}
	}
	return true
}

// ApplyUpdate writes every owned path the update supplies a non-null value
// for. Null or missing update values are never written, so a field holding a
// prior value is never clobbered with null.
func (r Record) ApplyUpdate(ownedFields []string, upd ParsedUpdate) (Record, error) {
	out := r
	for _, path := range ownedFields {
		raw, ok := upd[path]
		if !ok || isJSONNull(raw) {
			continue
		}
		var err error
		out, err = out.SetRaw(path, raw)
		if err != nil {
			return nil, fmt.Errorf("ApplyUpdate: %w", err)
		}
	}
	return out, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// rawOrList renders the raw JSON at path for prompt interpolation, showing
// "[]" when the path has no value yet.
func rawOrList(rec Record, path string) string {
	if v, ok := rec.Get(path); ok {
		return v.Raw
	}
	return "[]"
}

// listOrEmpty returns the raw array at key, defaulting to "[]" when the reply
// omitted it. The default marks a list field satisfied once its pass has run,
// even when the model extracted no items.
func listOrEmpty(obj gjson.Result, key string) json.RawMessage {
	v := obj.Get(key)
	if v.Exists() && v.Type != gjson.Null {
		return json.RawMessage(v.Raw)
	}
	return json.RawMessage(`[]`)
}

// putIfPresent copies a reply value into the update only when the model
// actually produced one; absent and null values are left out entirely.
func putIfPresent(upd ParsedUpdate, path string, v gjson.Result) {
	if v.Exists() && v.Type != gjson.Null {
		upd[path] = json.RawMessage(v.Raw)
	}
}
