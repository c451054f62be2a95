package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Resource is a fetched resource document. The header fields are typed; the
// body is passed through as an ordered document. The three sub-structures the
// exporter rewrites (lexica, attachedFlows, newIntents) are reached through
// typed accessors that edit Document in place.
type Resource struct {
	Type     ResourceType `bson:"-"`
	ID       ObjectRef    `bson:"_id"`
	ParentID ObjectRef    `bson:"parentId"`

	Document bson.D `bson:"-"`
}

// DecodeResource decodes a raw document of the given type.
func DecodeResource(t ResourceType, raw bson.Raw) (*Resource, error) {
	res := &Resource{Type: t}
	if err := bson.Unmarshal(raw, res); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t, err)
	}
	if err := bson.Unmarshal(raw, &res.Document); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", t, err)
	}
	return res, nil
}

// DependencyRefs is a view over an array of symbolic dependency names inside a
// resource document. Set writes through to the document.
type DependencyRefs struct {
	values bson.A
}

// Len returns the number of entries.
func (d DependencyRefs) Len() int {
	return len(d.values)
}

// Name returns entry i and whether it is a string.
func (d DependencyRefs) Name(i int) (string, bool) {
	s, ok := d.values[i].(string)
	return s, ok
}

// Raw returns entry i as stored.
func (d DependencyRefs) Raw(i int) any {
	return d.values[i]
}

// Set replaces entry i, keeping its position.
func (d DependencyRefs) Set(i int, value string) {
	d.values[i] = value
}

// Lexica returns the lexica.cognigy reference array, if present.
func (r *Resource) Lexica() (DependencyRefs, bool) {
	return r.dependencyRefs("lexica")
}

// AttachedFlows returns the attachedFlows.cognigy reference array, if present.
func (r *Resource) AttachedFlows() (DependencyRefs, bool) {
	return r.dependencyRefs("attachedFlows")
}

func (r *Resource) dependencyRefs(field string) (DependencyRefs, bool) {
	sub, ok := subDocument(r.Document, field)
	if !ok {
		return DependencyRefs{}, false
	}
	idx := indexOf(sub, "cognigy")
	if idx < 0 {
		return DependencyRefs{}, false
	}
	switch arr := sub[idx].Value.(type) {
	case bson.A:
		return DependencyRefs{values: arr}, true
	case []any:
		return DependencyRefs{values: bson.A(arr)}, true
	}
	return DependencyRefs{}, false
}

// ResetTraining forces retraining after import: newIntents.trained becomes
// false and newIntents.modelId becomes null, each only where the field exists.
// Returns true if anything was reset.
func (r *Resource) ResetTraining() bool {
	sub, ok := subDocument(r.Document, "newIntents")
	if !ok {
		return false
	}
	reset := false
	if i := indexOf(sub, "trained"); i >= 0 {
		sub[i].Value = false
		reset = true
	}
	if i := indexOf(sub, "modelId"); i >= 0 {
		sub[i].Value = nil
		reset = true
	}
	return reset
}

// subDocument returns the embedded document stored under key. The returned
// slice shares its backing array with doc, so element writes are visible in doc.
func subDocument(doc bson.D, key string) (bson.D, bool) {
	i := indexOf(doc, key)
	if i < 0 {
		return nil, false
	}
	sub, ok := doc[i].Value.(bson.D)
	return sub, ok
}

func indexOf(doc bson.D, key string) int {
	for i := range doc {
		if doc[i].Key == key {
			return i
		}
	}
	return -1
}
