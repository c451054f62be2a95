// Package normalize rewrites database identifiers inside exported documents
// into the portable {"$oid": "<hex>"} form.
//
// The walk never mutates its input: every document and array on the way is
// rebuilt, leaves are copied by value.
package normalize

import (
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	idKey  = "_id"
	oidKey = "$oid"

	// lexicaKey holds lexicon attachments, which are shallow: only their own
	// _id is rewritten.
	lexicaKey = "lexica"

	// exampleSentencesKey holds free text that can look like hex identifiers.
	exampleSentencesKey = "exampleSentences"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Document returns a copy of doc with every identifier wrapped as {"$oid": hex}:
// every _id value, every native ObjectID, and every 24-character hex string
// outside an exampleSentences field. Already wrapped values are left as they are,
// so Document(Document(d)) equals Document(d).
func Document(doc bson.D) bson.D {
	return walkDocument(doc, false)
}

// isObjectIDHex reports whether s looks like a hex-encoded ObjectID.
func isObjectIDHex(s string) bool {
	return objectIDPattern.MatchString(s)
}

// wrap returns the portable form of an identifier.
func wrap(hex string) bson.D {
	return bson.D{{Key: oidKey, Value: hex}}
}

// isWrapped reports whether v is already in {"$oid": "<string>"} form.
func isWrapped(v any) bool {
	doc, ok := v.(bson.D)
	if !ok || len(doc) != 1 || doc[0].Key != oidKey {
		return false
	}
	_, ok = doc[0].Value.(string)
	return ok
}

func walkDocument(doc bson.D, exempt bool) bson.D {
	if doc == nil {
		return nil
	}
	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		out = append(out, bson.E{Key: e.Key, Value: walkField(e.Key, e.Value, exempt)})
	}
	return out
}

func walkField(key string, v any, exempt bool) any {
	switch key {
	case idKey:
		if wrapped, ok := wrapID(v); ok {
			return wrapped
		}
	case lexicaKey:
		if sub, ok := asDocument(v); ok && !isWrapped(sub) {
			return shallowLexica(sub)
		}
	case exampleSentencesKey:
		exempt = true
	}
	return walkValue(v, exempt)
}

func walkValue(v any, exempt bool) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return wrap(val.Hex())
	case string:
		if !exempt && isObjectIDHex(val) {
			return wrap(val)
		}
		return val
	case bson.D:
		if isWrapped(val) {
			return wrap(val[0].Value.(string))
		}
		return walkDocument(val, exempt)
	case bson.M:
		return walkValue(sortedDocument(val), exempt)
	case map[string]any:
		return walkValue(sortedDocument(val), exempt)
	case bson.A:
		return walkArray(val, exempt)
	case []any:
		return walkArray(val, exempt)
	default:
		return v
	}
}

func walkArray(arr []any, exempt bool) bson.A {
	if arr == nil {
		return nil
	}
	out := make(bson.A, len(arr))
	for i, elem := range arr {
		out[i] = walkValue(elem, exempt)
	}
	return out
}

// wrapID converts the value of an _id field. Values that are neither strings
// nor ObjectIDs (compound keys, numbers) are not identifiers in the portable
// sense and go through the regular walk.
func wrapID(v any) (bson.D, bool) {
	switch val := v.(type) {
	case primitive.ObjectID:
		return wrap(val.Hex()), true
	case string:
		return wrap(val), true
	case bson.D:
		if isWrapped(val) {
			return wrap(val[0].Value.(string)), true
		}
	}
	return nil, false
}

// shallowLexica rewrites only the lexica document's own _id; all other fields
// are copied without inspection.
func shallowLexica(doc bson.D) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		if e.Key == idKey {
			if wrapped, ok := wrapID(e.Value); ok {
				out = append(out, bson.E{Key: e.Key, Value: wrapped})
				continue
			}
		}
		out = append(out, bson.E{Key: e.Key, Value: clone(e.Value)})
	}
	return out
}

func asDocument(v any) (bson.D, bool) {
	switch val := v.(type) {
	case bson.D:
		return val, true
	case bson.M:
		return sortedDocument(val), true
	case map[string]any:
		return sortedDocument(val), true
	}
	return nil, false
}

// sortedDocument turns an unordered map into a document with sorted keys so the
// written snapshot is stable between runs.
func sortedDocument(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: m[k]})
	}
	return doc
}

func clone(v any) any {
	switch val := v.(type) {
	case bson.D:
		out := make(bson.D, len(val))
		for i, e := range val {
			out[i] = bson.E{Key: e.Key, Value: clone(e.Value)}
		}
		return out
	case bson.M:
		return clone(sortedDocument(val))
	case map[string]any:
		return clone(sortedDocument(val))
	case bson.A:
		return cloneArray(val)
	case []any:
		return cloneArray(val)
	case primitive.Binary:
		return primitive.Binary{Subtype: val.Subtype, Data: append([]byte(nil), val.Data...)}
	default:
		return v
	}
}

func cloneArray(arr []any) bson.A {
	out := make(bson.A, len(arr))
	for i, elem := range arr {
		out[i] = clone(elem)
	}
	return out
}
