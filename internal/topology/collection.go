package topology

// ordered is an insertion-ordered collection keyed by id. Replacing an
// existing key keeps its position; inserting a new key appends it.
type ordered[T any] struct {
	keys  []string
	items map[string]*T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{items: make(map[string]*T)}
}

func (o *ordered[T]) get(id string) (*T, bool) {
	v, ok := o.items[id]
	return v, ok
}

func (o *ordered[T]) set(id string, v *T) {
	if _, ok := o.items[id]; !ok {
		o.keys = append(o.keys, id)
	}
	o.items[id] = v
}

// insertAt places a new key at position i, clamped to the current length.
// An existing key is replaced in place.
func (o *ordered[T]) insertAt(i int, id string, v *T) {
	if _, ok := o.items[id]; ok {
		o.items[id] = v
		return
	}
	if i < 0 || i > len(o.keys) {
		i = len(o.keys)
	}
	o.keys = append(o.keys, "")
	copy(o.keys[i+1:], o.keys[i:])
	o.keys[i] = id
	o.items[id] = v
}

func (o *ordered[T]) indexOf(id string) int {
	for i, k := range o.keys {
		if k == id {
			return i
		}
	}
	return -1
}

func (o *ordered[T]) delete(id string) bool {
	if _, ok := o.items[id]; !ok {
		return false
	}
	delete(o.items, id)
	for i, k := range o.keys {
		if k == id {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

func (o *ordered[T]) len() int {
	return len(o.keys)
}

func (o *ordered[T]) values() []*T {
	out := make([]*T, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.items[k])
	}
	return out
}

func (o *ordered[T]) clear() {
	o.keys = nil
	o.items = make(map[string]*T)
}
