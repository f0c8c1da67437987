package document

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// RequestSchema is the JSON Schema every request document must satisfy.
const RequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["url", "method", "headers"],
  "additionalProperties": false,
  "properties": {
    "url": {"type": "string"},
    "method": {"type": "string"},
    "headers": {
      "type": "object",
      "additionalProperties": {"type": ["string", "null"]}
    },
    "body": {"type": ["string", "null"]},
    "body_path": {"type": ["string", "null"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(RequestSchema)

// validateStructure checks clean (comment-free JSON) against RequestSchema and
// returns the violation that appears earliest in the document.
func validateStructure(data, clean []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(clean))
	if err != nil {
		return malformedAt(data, 0, "%v", err)
	}
	if result.Valid() {
		return nil
	}

	var first *MalformedInputError
	firstOffset := -1
	for _, desc := range result.Errors() {
		offset := locate(clean, desc)
		if first == nil || offset < firstOffset {
			first = malformedAt(data, offset, "%s", describe(desc))
			firstOffset = offset
		}
	}
	return first
}

// locate finds the byte offset of the value a schema violation refers to.
func locate(clean []byte, desc gojsonschema.ResultError) int {
	components := contextComponents(desc)
	if desc.Type() == "additional_property_not_allowed" {
		if prop, ok := desc.Details()["property"].(string); ok {
			components = append(components, prop)
		}
	}

	root := rootOffset(clean)
	if len(components) == 0 {
		return root
	}

	escaped := make([]string, len(components))
	for i, c := range components {
		escaped[i] = escapePathComponent(c)
	}
	res := gjson.GetBytes(clean, strings.Join(escaped, "."))
	if !res.Exists() || res.Index == 0 {
		return root
	}
	return res.Index
}

// contextComponents splits a violation's context into object keys. Only the
// headers object has arbitrary keys, so everything after "headers." is a
// single component even when it contains dots.
func contextComponents(desc gojsonschema.ResultError) []string {
	ctx := strings.TrimPrefix(desc.Context().String(), gojsonschema.STRING_CONTEXT_ROOT)
	ctx = strings.TrimPrefix(ctx, ".")
	if ctx == "" {
		return nil
	}
	if name, ok := strings.CutPrefix(ctx, "headers."); ok {
		return []string{"headers", name}
	}
	return []string{ctx}
}

func describe(desc gojsonschema.ResultError) string {
	components := contextComponents(desc)
	if len(components) == 0 {
		return desc.Description()
	}
	return fmt.Sprintf("%s: %s", strings.Join(components, "."), desc.Description())
}

func rootOffset(clean []byte) int {
	for i, b := range clean {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return i
	}
	return 0
}

// escapePathComponent escapes characters that gjson treats as path syntax.
func escapePathComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
