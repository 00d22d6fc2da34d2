package sfv

import "iter"

// entry is one key/value pair of an ordered map.
type entry[V any] struct {
	Key   string
	Value V
}

// ordered is an insertion-ordered map with unique keys. Setting a key that is
// already present replaces its value and keeps its position.
//
// Copies of an ordered share storage until one of them is mutated: set and
// delete always write to fresh storage, so a copy never observes another
// copy's changes. put mutates in place and is only for maps the caller built
// and has not handed out yet.
type ordered[V any] struct {
	entries []entry[V]
	index   map[string]int
}

func (m *ordered[V]) set(key string, v V) {
	c := m.clone()
	c.put(key, v)
	*m = c
}

func (m *ordered[V]) put(key string, v V) {
	if i, ok := m.lookup(key); ok {
		m.entries[i].Value = v
		return
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, entry[V]{Key: key, Value: v})
}

// lookup returns the position of key, checking it against entries so that a
// stale index can never point past or at the wrong entry.
func (m *ordered[V]) lookup(key string) (int, bool) {
	i, ok := m.index[key]
	if !ok || i >= len(m.entries) || m.entries[i].Key != key {
		return 0, false
	}
	return i, true
}

func (m *ordered[V]) get(key string) (V, bool) {
	if i, ok := m.lookup(key); ok {
		return m.entries[i].Value, true
	}
	var zero V
	return zero, false
}

func (m *ordered[V]) delete(key string) bool {
	i, ok := m.lookup(key)
	if !ok {
		return false
	}
	entries := make([]entry[V], 0, len(m.entries)-1)
	entries = append(entries, m.entries[:i]...)
	entries = append(entries, m.entries[i+1:]...)
	index := make(map[string]int, len(entries))
	for j, e := range entries {
		index[e.Key] = j
	}
	m.entries, m.index = entries, index
	return true
}

func (m *ordered[V]) len() int {
	return len(m.entries)
}

func (m *ordered[V]) keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *ordered[V]) all() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (m *ordered[V]) clone() ordered[V] {
	if len(m.entries) == 0 {
		return ordered[V]{}
	}
	c := ordered[V]{
		entries: make([]entry[V], len(m.entries), len(m.entries)+1),
		index:   make(map[string]int, len(m.entries)+1),
	}
	copy(c.entries, m.entries)
	for i, e := range c.entries {
		c.index[e.Key] = i
	}
	return c
}

func (m *ordered[V]) equal(other *ordered[V], eq func(a, b V) bool) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i].Key != other.entries[i].Key {
			return false
		}
		if !eq(m.entries[i].Value, other.entries[i].Value) {
			return false
		}
	}
	return true
}
