package snapshot

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func testLayout() Layout {
	return Layout{Root: "data", Organisation: "5f0c8a7e2b1d4c3a9e8f7a6b"}
}

func TestLayout_Paths(t *testing.T) {
	l := testLayout()

	assert.Equal(t,
		filepath.Join("data", "organisations", "5f0c8a7e2b1d4c3a9e8f7a6b", "projects", "p1", "p1.json"),
		l.ProjectFile("p1"))
	assert.Equal(t,
		filepath.Join("data", "organisations", "5f0c8a7e2b1d4c3a9e8f7a6b", "projects", "p1", "database-connections", "r1.json"),
		l.ResourceFile("p1", "database-connections", "r1"))
}

func TestFileWriter_WritesRelaxedExtJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFileWriter(fs, testLayout())

	doc := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$oid", Value: "5f0c8a7e2b1d4c3a9e8f7a6c"}}},
		{Key: "name", Value: "Main"},
		{Key: "createdAt", Value: int64(1600000000000)},
		{Key: "trained", Value: false},
		{Key: "modelId", Value: nil},
	}
	require.NoError(t, w.WriteResource("p1", "flows", "r1", doc))

	data, err := afero.ReadFile(fs, testLayout().ResourceFile("p1", "flows", "r1"))
	require.NoError(t, err)

	assert.Equal(t,
		`{"_id":{"$oid":"5f0c8a7e2b1d4c3a9e8f7a6c"},"name":"Main","createdAt":1600000000000,"trained":false,"modelId":null}`,
		string(data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Main", decoded["name"])
}

func TestFileWriter_ResetProject(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFileWriter(fs, testLayout())

	require.NoError(t, w.WriteProject("p1", bson.D{{Key: "name", Value: "one"}}))
	require.NoError(t, w.WriteResource("p1", "secrets", "s1", bson.D{}))
	require.NoError(t, w.WriteProject("p2", bson.D{{Key: "name", Value: "two"}}))

	require.NoError(t, w.ResetProject("p1"))

	exists, err := afero.DirExists(fs, testLayout().ProjectDir("p1"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = afero.Exists(fs, testLayout().ProjectFile("p2"))
	require.NoError(t, err)
	assert.True(t, exists, "other projects are untouched")

	// resetting a project that was never written is fine
	assert.NoError(t, w.ResetProject("p3"))
}

func TestFileWriter_RejectsPathEscapes(t *testing.T) {
	w := NewFileWriter(afero.NewMemMapFs(), testLayout())

	assert.Error(t, w.ResetProject(".."))
	assert.Error(t, w.WriteProject("", bson.D{}))
	assert.Error(t, w.WriteResource("p1", "flows", "../../x", bson.D{}))
}

func TestEncode_Nil(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
