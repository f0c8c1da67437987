package document

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Valid(t *testing.T) {
	doc := `{
  "url": "https://example.test/x",
  "method": "post",
  "headers": {"content-type": "text/plain", "content-length": null},
  "body": "payload"
}`
	spec, err := Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/x", spec.URL)
	assert.Equal(t, "post", spec.Method)
	require.Len(t, spec.Headers, 2)
	assert.Equal(t, "content-type", spec.Headers[0].Name)
	require.NotNil(t, spec.Headers[0].Value)
	assert.Equal(t, "text/plain", *spec.Headers[0].Value)
	assert.Equal(t, "content-length", spec.Headers[1].Name)
	assert.Nil(t, spec.Headers[1].Value)
	require.NotNil(t, spec.Body)
	assert.Equal(t, "payload", *spec.Body)
	assert.Nil(t, spec.BodyPath)
}

func TestDecode_EmptyHeadersAndNullBody(t *testing.T) {
	spec, err := Decode([]byte(`{"url":"http://a.test","method":"GET","headers":{},"body":null}`))
	require.NoError(t, err)
	assert.Empty(t, spec.Headers)
	assert.Nil(t, spec.Body)
	assert.Nil(t, spec.BodyPath)
}

func TestDecode_BodyPath(t *testing.T) {
	spec, err := Decode([]byte(`{"url":"http://a.test","method":"PUT","headers":{},"body_path":"data/body.txt"}`))
	require.NoError(t, err)
	require.NotNil(t, spec.BodyPath)
	assert.Equal(t, "data/body.txt", *spec.BodyPath)
}

func TestDecode_CommentsAndTrailingCommas(t *testing.T) {
	doc := `{
  // where to send it
  "url": "http://a.test",
  "method": "GET", /* verb */
  "headers": {
    "accept": "*/*",
  },
}`
	spec, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, spec.Headers, 1)
	assert.Equal(t, "*/*", *spec.Headers[0].Value)
}

func TestDecode_CaseVariantHeadersKept(t *testing.T) {
	doc := `{"url":"http://a.test","method":"GET","headers":{"X-Trace":"a","x-trace":"b"}}`
	spec, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, spec.Headers, 2)
	assert.Equal(t, "X-Trace", spec.Headers[0].Name)
	assert.Equal(t, "x-trace", spec.Headers[1].Name)
}

func TestDecode_DuplicateHeaderRejected(t *testing.T) {
	doc := `{"url":"http://a.test","method":"GET","headers":{"accept":"a","accept":"b"}}`
	_, err := Decode([]byte(doc))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Line)
	assert.Equal(t, strings.LastIndex(doc, `"b"`)+1, malformed.Column)
	assert.Contains(t, malformed.Msg, "duplicate header")
}

func TestDecode_DuplicateField(t *testing.T) {
	doc := "{\n  \"url\": \"http://a.test\",\n  \"url\": \"http://b.test\",\n  \"method\": \"GET\",\n  \"headers\": {}\n}"
	spec, err := Decode([]byte(doc))
	assert.Nil(t, spec)

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Line)
	assert.Equal(t, 10, malformed.Column)
	assert.Contains(t, malformed.Msg, `duplicate field "url"`)
}

func TestDecode_SyntaxErrorPosition(t *testing.T) {
	doc := "{\n  \"url\" \"x\"\n}"
	_, err := Decode([]byte(doc))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
	assert.Equal(t, 9, malformed.Column)
}

func TestDecode_EmptyDocument(t *testing.T) {
	_, err := Decode([]byte(""))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Line)
}

func TestDecode_MissingRequiredField(t *testing.T) {
	_, err := Decode([]byte(`{"url":"http://a.test","method":"GET"}`))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Line)
	assert.Equal(t, 1, malformed.Column)
	assert.Contains(t, malformed.Msg, "headers")
}

func TestDecode_WrongHeaderValueType(t *testing.T) {
	doc := `{
  "url": "https://example.test",
  "method": "GET",
  "headers": {"accept": 5}
}`
	_, err := Decode([]byte(doc))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 4, malformed.Line)
	assert.Equal(t, 25, malformed.Column)
	assert.Contains(t, malformed.Msg, "headers.accept")
}

func TestDecode_WrongTopLevelType(t *testing.T) {
	doc := "{\n  \"url\": 42,\n  \"method\": \"GET\",\n  \"headers\": {}\n}"
	_, err := Decode([]byte(doc))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
	assert.Equal(t, 10, malformed.Column)
}

func TestDecode_UnknownField(t *testing.T) {
	doc := `{"url":"http://a.test","method":"GET","headers":{},"extra":true}`
	_, err := Decode([]byte(doc))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, strings.Index(doc, "true")+1, malformed.Column)
	assert.Contains(t, malformed.Msg, "extra")
}

func TestDecode_NotAnObject(t *testing.T) {
	_, err := Decode([]byte(`  ["GET"]`))

	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Line)
	assert.Equal(t, 3, malformed.Column)
}

func TestLoad(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"url":"http://a.test","method":"GET","headers":{}}`), 0644))

		spec, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "GET", spec.Method)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")
		_, err := Load(path)

		var ioErr *InputIOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "input file", ioErr.What)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}

func TestPosition(t *testing.T) {
	data := []byte("ab\ncd\n\nef")
	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{7, 4, 1},
		{100, 4, 3},
	}
	for _, tt := range tests {
		line, col := position(data, tt.offset)
		assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d", tt.offset)
	}
}
