package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseObjectRef(t *testing.T) {
	ref := ParseObjectRef("5f1a2b3c4d5e6f7081920a1b")
	assert.True(t, ref.IsNative())
	assert.Equal(t, "5f1a2b3c4d5e6f7081920a1b", ref.String())
	assert.IsType(t, primitive.ObjectID{}, ref.Value())

	ref = ParseObjectRef("not-an-object-id")
	assert.False(t, ref.IsNative())
	assert.Equal(t, "not-an-object-id", ref.Value())

	var zero ObjectRef
	assert.True(t, zero.IsZero())
	assert.Nil(t, zero.Value())
	assert.Equal(t, "", zero.String())
}

func TestObjectRef_BSONRoundTripKeepsNativeForm(t *testing.T) {
	type holder struct {
		Native ObjectRef `bson:"native"`
		Str    ObjectRef `bson:"str"`
		Null   ObjectRef `bson:"null"`
		Number ObjectRef `bson:"number"`
	}

	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "native", Value: oid},
		{Key: "str", Value: "abc"},
		{Key: "null", Value: nil},
		{Key: "number", Value: int32(42)},
	})
	require.NoError(t, err)

	var h holder
	require.NoError(t, bson.Unmarshal(raw, &h))
	assert.Equal(t, OIDRef(oid), h.Native)
	assert.Equal(t, StringRef("abc"), h.Str)
	assert.True(t, h.Null.IsZero())
	assert.Equal(t, "42", h.Number.String())

	// Re-encoding writes the native ObjectID back, not its hex string.
	out, err := bson.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, oid, bson.Raw(out).Lookup("native").ObjectID())
	assert.Equal(t, "abc", bson.Raw(out).Lookup("str").StringValue())
}

func TestObjectRef_RejectsUnsupportedType(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: true}})
	require.NoError(t, err)

	var res struct {
		ID ObjectRef `bson:"_id"`
	}
	assert.Error(t, bson.Unmarshal(raw, &res))
}
