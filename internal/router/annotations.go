package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Annotations is an ordered key/value mapping attached to a route.
// Keys keep their first insertion position; Set on an existing key
// replaces the value in place. The zero value is ready to use.
type Annotations struct {
	keys   []string
	values map[string]interface{}
}

// NewAnnotations builds annotations from alternating key/value pairs.
// It panics on an odd argument count or a non-string key.
func NewAnnotations(kv ...interface{}) Annotations {
	if len(kv)%2 != 0 {
		panic("router: NewAnnotations requires key/value pairs")
	}

	var a Annotations
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("router: annotation key must be string, got %T", kv[i]))
		}
		a.Set(key, kv[i+1])
	}
	return a
}

// FromMap converts an unordered map, ordering keys lexically
func FromMap[V any](m map[string]V) Annotations {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var a Annotations
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

// Set stores value under key
func (a *Annotations) Set(key string, value interface{}) {
	if a.values == nil {
		a.values = make(map[string]interface{})
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key
func (a Annotations) Get(key string) (interface{}, bool) {
	v, ok := a.values[key]
	return v, ok
}

// String returns the value under key when it is a string
func (a Annotations) String(key string) string {
	s, _ := a.values[key].(string)
	return s
}

// Keys returns the keys in insertion order
func (a Annotations) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of entries
func (a Annotations) Len() int {
	return len(a.keys)
}

// Clone returns an independent copy. Nested maps, slices and
// annotations are copied recursively.
func (a Annotations) Clone() Annotations {
	var c Annotations
	for _, k := range a.keys {
		c.Set(k, deepCopy(a.values[k]))
	}
	return c
}

// deepCopy copies the container types JSON decoding and callers produce;
// other values are returned as is
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case Annotations:
		return t.Clone()
	case map[string]interface{}:
		if t == nil {
			return t
		}
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = deepCopy(val)
		}
		return m
	case []interface{}:
		if t == nil {
			return t
		}
		s := make([]interface{}, len(t))
		for i, val := range t {
			s[i] = deepCopy(val)
		}
		return s
	case map[string]string:
		if t == nil {
			return t
		}
		m := make(map[string]string, len(t))
		for k, val := range t {
			m[k] = val
		}
		return m
	case []string:
		if t == nil {
			return t
		}
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Merge overlays other onto a; other's values win on collision
func (a *Annotations) Merge(other Annotations) {
	for _, k := range other.keys {
		a.Set(k, other.values[k])
	}
}

// Map returns an unordered copy
func (a Annotations) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(a.keys))
	for _, k := range a.keys {
		out[k] = a.values[k]
	}
	return out
}

// MarshalJSON encodes the annotations as a JSON object in key order
func (a Annotations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal annotation %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping document key order
func (a *Annotations) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = Annotations{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("annotations must be a JSON object")
	}

	var out Annotations
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected annotation key %v", tok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode annotation %q: %w", key, err)
		}
		out.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}
