package models

// Worklist maps each resource collection name ("flows", "lexicons", ...) to
// the identifiers to fetch, in descriptor order. Flow entries are parent
// identifiers.
type Worklist struct {
	entries map[string][]ObjectRef
}

// NewWorklist returns a worklist with one empty sequence per resource type.
func NewWorklist() *Worklist {
	w := &Worklist{entries: make(map[string][]ObjectRef, len(ResourceTypes))}
	for _, t := range ResourceTypes {
		w.entries[t.Collection()] = []ObjectRef{}
	}
	return w
}

// Add appends ref to the sequence of type t.
func (w *Worklist) Add(t ResourceType, ref ObjectRef) {
	w.entries[t.Collection()] = append(w.entries[t.Collection()], ref)
}

// Entries returns the queued identifiers for a collection name.
func (w *Worklist) Entries(collection string) []ObjectRef {
	return w.entries[collection]
}

// Collections returns a copy of the worklist keyed by collection name.
func (w *Worklist) Collections() map[string][]ObjectRef {
	out := make(map[string][]ObjectRef, len(w.entries))
	for k, v := range w.entries {
		out[k] = append([]ObjectRef(nil), v...)
	}
	return out
}

// Len returns the total number of queued identifiers.
func (w *Worklist) Len() int {
	n := 0
	for _, v := range w.entries {
		n += len(v)
	}
	return n
}

// Each calls fn for every resource type in canonical order, stopping at the
// first error.
func (w *Worklist) Each(fn func(t ResourceType, keys []ObjectRef) error) error {
	for _, t := range ResourceTypes {
		if err := fn(t, w.entries[t.Collection()]); err != nil {
			return err
		}
	}
	return nil
}
