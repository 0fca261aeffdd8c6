// Package request models the key-value bundle an app control request
// arrives in, and the per-invocation context parsed from it.
package request

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Well-known bundle keys.
const (
	KeyOperation   = "operation"
	KeyMIME        = "mime"
	KeyURI         = "uri"
	KeyWindowID    = "window_id"
	KeyCallerPID   = "caller_pid"
	KeyExtraList   = "selector_extra_list"
	KeyCallerNoti  = "caller_noti"
	KeyStartInfo   = "start_info"
	KeySendResult  = "send_result"
	KeyCalleePID   = "callee_pid"
	StartInfoAbort = "c"
)

// Kind reports how a key is stored in a Bundle.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindArray
)

// Bundle is an ordered-on-output map of string and string-array values.
type Bundle struct {
	strs map[string]string
	arrs map[string][]string
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{
		strs: make(map[string]string),
		arrs: make(map[string][]string),
	}
}

// Get returns the string value of key.
func (b *Bundle) Get(key string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.strs[key]
	return v, ok
}

// Value returns the string value of key, or "" when absent.
func (b *Bundle) Value(key string) string {
	v, _ := b.Get(key)
	return v
}

// GetArray returns the array value of key.
func (b *Bundle) GetArray(key string) ([]string, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.arrs[key]
	return v, ok
}

// Type reports whether key holds a string, an array or nothing.
func (b *Bundle) Type(key string) Kind {
	if b == nil {
		return KindNone
	}
	if _, ok := b.arrs[key]; ok {
		return KindArray
	}
	if _, ok := b.strs[key]; ok {
		return KindString
	}
	return KindNone
}

// Set stores a string value, replacing any previous value of key.
func (b *Bundle) Set(key, val string) {
	delete(b.arrs, key)
	b.strs[key] = val
}

// SetArray stores an array value, replacing any previous value of key.
func (b *Bundle) SetArray(key string, vals []string) {
	delete(b.strs, key)
	b.arrs[key] = append([]string(nil), vals...)
}

// Len returns the number of keys.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.strs) + len(b.arrs)
}

// Keys returns all keys sorted.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, b.Len())
	for k := range b.strs {
		keys = append(keys, k)
	}
	for k := range b.arrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (b *Bundle) Clone() *Bundle {
	c := NewBundle()
	if b == nil {
		return c
	}
	for k, v := range b.strs {
		c.strs[k] = v
	}
	for k, v := range b.arrs {
		c.arrs[k] = append([]string(nil), v...)
	}
	return c
}

// MarshalJSON encodes the bundle as a flat object.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, b.Len())
	if b != nil {
		for k, v := range b.strs {
			out[k] = v
		}
		for k, v := range b.arrs {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts an object whose values are strings or string arrays.
// Numbers and booleans are kept in their literal string form.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}

	b.strs = make(map[string]string, len(raw))
	b.arrs = make(map[string][]string)

	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			b.strs[k] = s
			continue
		}
		var arr []string
		if err := json.Unmarshal(v, &arr); err == nil {
			b.arrs[k] = arr
			continue
		}
		var lit any
		if err := json.Unmarshal(v, &lit); err != nil {
			return fmt.Errorf("decode bundle key %q: %w", k, err)
		}
		switch lit.(type) {
		case float64, bool:
			b.strs[k] = string(v)
		default:
			return fmt.Errorf("decode bundle key %q: unsupported value %s", k, v)
		}
	}
	return nil
}
