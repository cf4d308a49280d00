package vfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJSONRoundTrip(t *testing.T) {
	s := newTestStore(t)
	root := s.Root()

	data, err := Encode(root, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "notes.txt"`)

	decoded, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(root, decoded, cmpopts.EquateEmpty()))
}

func TestEncodeFormats(t *testing.T) {
	s := newTestStore(t)
	docs := s.GetItemByPath(documents)

	for _, f := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Encode(docs, f)
			require.NoError(t, err)
			assert.Contains(t, string(data), "todo.md")

			decoded, err := Decode(data, f)
			require.NoError(t, err)
			assert.Equal(t, "Documents", decoded.Name)
			assert.Equal(t, childNames(docs), childNames(decoded))
			assert.Equal(t, docs.Children[0].Content, decoded.Children[0].Content)
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(nil, FormatJSON)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Encode(&Item{}, Format("xml"))
	assert.Error(t, err)

	_, err = Decode([]byte("{"), FormatJSON)
	assert.Error(t, err)
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "application/yaml", FormatYAML.ContentType())
	assert.Equal(t, "application/toml", FormatTOML.ContentType())
}
