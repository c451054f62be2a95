package models

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectRef is an identifier as stored in the source database. Most identifiers
// are native ObjectIDs, but older documents carry plain strings. The native form
// is kept so exact-match filters hit the stored value.
type ObjectRef struct {
	oid    primitive.ObjectID
	str    string
	native bool
	set    bool
}

// OIDRef wraps a native ObjectID.
func OIDRef(oid primitive.ObjectID) ObjectRef {
	return ObjectRef{oid: oid, native: true, set: true}
}

// StringRef wraps a plain string identifier.
func StringRef(s string) ObjectRef {
	return ObjectRef{str: s, set: true}
}

// ParseObjectRef returns a native reference when s is a valid ObjectID hex
// string, and a string reference otherwise.
func ParseObjectRef(s string) ObjectRef {
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return OIDRef(oid)
	}
	return StringRef(s)
}

// IsZero reports whether the reference was never set (absent or null in the source).
func (r ObjectRef) IsZero() bool {
	return !r.set
}

// IsNative reports whether the reference is a native ObjectID.
func (r ObjectRef) IsNative() bool {
	return r.native
}

// String returns the hex form for native references and the raw string otherwise.
func (r ObjectRef) String() string {
	if r.native {
		return r.oid.Hex()
	}
	return r.str
}

// Value returns the reference in the form to use inside a query filter.
func (r ObjectRef) Value() any {
	switch {
	case r.native:
		return r.oid
	case r.set:
		return r.str
	default:
		return nil
	}
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (r ObjectRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !r.set {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(r.Value())
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (r *ObjectRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		*r = OIDRef(raw.ObjectID())
	case bsontype.String:
		*r = StringRef(raw.StringValue())
	case bsontype.Int32:
		*r = StringRef(strconv.FormatInt(int64(raw.Int32()), 10))
	case bsontype.Int64:
		*r = StringRef(strconv.FormatInt(raw.Int64(), 10))
	case bsontype.Null, bsontype.Undefined:
		*r = ObjectRef{}
	default:
		return fmt.Errorf("unsupported identifier type %s", t)
	}
	return nil
}
