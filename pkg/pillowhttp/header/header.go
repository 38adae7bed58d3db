// Package header implements the ordered, duplicate-preserving header
// collection shared by the response parser, the request writer and the
// client engine.
package header

// Header is a single name/value pair as observed on the wire. A
// Collection stores values verbatim as given to Add; the response parser
// strips leading and trailing OWS around a value (RFC 7230) before adding
// it, and never alters the name.
type Header struct {
	Name  []byte
	Value []byte
}

// Collection is an ordered, duplicate-preserving sequence of headers.
// Iteration order always equals insertion order; name comparisons are
// ASCII case-insensitive, values are compared bytewise.
type Collection struct {
	items []Header
}

// New returns an empty Collection with capacity for n headers.
func New(n int) *Collection {
	return &Collection{items: make([]Header, 0, n)}
}

// Add appends a header, copying name and value so the Collection does not
// alias caller-owned or parser-internal buffers that may be reused.
func (c *Collection) Add(name, value []byte) {
	c.items = append(c.items, Header{Name: cloneBytes(name), Value: cloneBytes(value)})
}

// AddString is a convenience wrapper around Add for string literals.
func (c *Collection) AddString(name, value string) {
	c.Add([]byte(name), []byte(value))
}

// Get returns the value of the first header matching name
// (case-insensitive), or nil if none exists.
func (c *Collection) Get(name []byte) []byte {
	for i := range c.items {
		if equalFold(c.items[i].Name, name) {
			return c.items[i].Value
		}
	}
	return nil
}

// GetString is a convenience wrapper around Get.
func (c *Collection) GetString(name string) (string, bool) {
	v := c.Get([]byte(name))
	if v == nil {
		return "", false
	}
	return string(v), true
}

// Has reports whether any header matches name (case-insensitive).
func (c *Collection) Has(name []byte) bool {
	for i := range c.items {
		if equalFold(c.items[i].Name, name) {
			return true
		}
	}
	return false
}

// GetAll returns every value for headers matching name, in insertion
// order. The returned outer slice is fresh, but its elements share
// storage with the collection's values.
func (c *Collection) GetAll(name []byte) [][]byte {
	var out [][]byte
	for i := range c.items {
		if equalFold(c.items[i].Name, name) {
			out = append(out, c.items[i].Value)
		}
	}
	return out
}

// Del removes every header matching name (case-insensitive).
func (c *Collection) Del(name []byte) {
	kept := c.items[:0]
	for _, h := range c.items {
		if !equalFold(h.Name, name) {
			kept = append(kept, h)
		}
	}
	c.items = kept
}

// Len returns the number of headers in the collection.
func (c *Collection) Len() int { return len(c.items) }

// At returns the header at position i, in insertion order.
func (c *Collection) At(i int) Header { return c.items[i] }

// VisitAll calls fn for every header in insertion order. Iteration stops
// early if fn returns false.
func (c *Collection) VisitAll(fn func(name, value []byte) bool) {
	for i := range c.items {
		if !fn(c.items[i].Name, c.items[i].Value) {
			return
		}
	}
}

// Reset clears the collection for reuse, keeping the backing array.
func (c *Collection) Reset() {
	c.items = c.items[:0]
}

// Equal reports whether two collections have the same length and are
// pairwise equal in order: names compared case-insensitively, values
// compared bytewise.
func (c *Collection) Equal(other *Collection) bool {
	if other == nil {
		return c.Len() == 0
	}
	if len(c.items) != len(other.items) {
		return false
	}
	for i := range c.items {
		if !equalFold(c.items[i].Name, other.items[i].Name) {
			return false
		}
		if string(c.items[i].Value) != string(other.items[i].Value) {
			return false
		}
	}
	return true
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// equalFold compares two byte slices for ASCII case-insensitive equality.
// Header names are always ASCII per RFC 7230, so a simple per-byte
// tolower is sufficient (no need for unicode.EqualFold).
func equalFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}
