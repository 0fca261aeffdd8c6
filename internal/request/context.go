package request

import (
	"strconv"
	"strings"
)

// Context is what one invocation asks to resolve.
type Context struct {
	Operation   string
	MIME        string
	URI         string
	WindowID    string
	CallerPID   int
	ExplicitIDs []string
}

// HasOperation reports whether there is anything to resolve.
func (c Context) HasOperation() bool {
	return strings.TrimSpace(c.Operation) != ""
}

// Parse extracts the request context from a bundle. A missing or malformed
// caller pid becomes -1. The explicit candidate list may be an array or a
// single string.
func Parse(b *Bundle) Context {
	c := Context{
		Operation: b.Value(KeyOperation),
		MIME:      b.Value(KeyMIME),
		URI:       b.Value(KeyURI),
		WindowID:  b.Value(KeyWindowID),
		CallerPID: -1,
	}

	if s, ok := b.Get(KeyCallerPID); ok {
		if pid, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			c.CallerPID = pid
		}
	}

	switch b.Type(KeyExtraList) {
	case KindArray:
		arr, _ := b.GetArray(KeyExtraList)
		for _, id := range arr {
			if id != "" {
				c.ExplicitIDs = append(c.ExplicitIDs, id)
			}
		}
	case KindString:
		if id := b.Value(KeyExtraList); id != "" {
			c.ExplicitIDs = []string{id}
		}
	}

	return c
}
