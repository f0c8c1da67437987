package document

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// DefaultRequestFile is the request document read when no path is given.
const DefaultRequestFile = "request.json"

// Header is one entry of the document's headers object. A nil Value means the
// document gave null and the value has to be derived.
type Header struct {
	Name  string
	Value *string
}

// RequestSpec is a decoded request document.
type RequestSpec struct {
	URL     string
	Method  string
	Headers []Header
	// Body and BodyPath are mutually exclusive; nil means absent or null.
	Body     *string
	BodyPath *string
}

type rawSpec struct {
	URL      string  `json:"url"`
	Method   string  `json:"method"`
	Body     *string `json:"body"`
	BodyPath *string `json:"body_path"`
}

// Load reads and decodes the request document at path.
func Load(path string) (*RequestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputIOError{What: "input file", Path: path, Err: err}
	}
	return Decode(data)
}

// Decode decodes a request document. Comments and trailing commas are
// accepted. Errors are *MalformedInputError with positions in data.
func Decode(data []byte) (*RequestSpec, error) {
	// jsonc keeps the byte length, so offsets in clean are offsets in data.
	clean := jsonc.ToJSON(data)

	var probe any
	if err := json.Unmarshal(clean, &probe); err != nil {
		return nil, syntaxError(data, err)
	}

	if err := checkDuplicateFields(data, clean); err != nil {
		return nil, err
	}

	if err := validateStructure(data, clean); err != nil {
		return nil, err
	}

	var raw rawSpec
	if err := json.Unmarshal(clean, &raw); err != nil {
		return nil, syntaxError(data, err)
	}

	headers, err := decodeHeaders(data, clean)
	if err != nil {
		return nil, err
	}

	return &RequestSpec{
		URL:      raw.URL,
		Method:   raw.Method,
		Headers:  headers,
		Body:     raw.Body,
		BodyPath: raw.BodyPath,
	}, nil
}

// checkDuplicateFields rejects a top-level field given more than once.
func checkDuplicateFields(data, clean []byte) error {
	root := gjson.ParseBytes(clean)
	if !root.IsObject() {
		return nil
	}

	seen := make(map[string]bool)
	var dupErr error
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if seen[name] {
			// Parse trims leading whitespace from Raw, so indexes may be relative to it.
			offset := rootOffset(clean)
			if value.Index > 0 {
				offset += value.Index - root.Index
			}
			dupErr = malformedAt(data, offset, "duplicate field %q", name)
			return false
		}
		seen[name] = true
		return true
	})
	return dupErr
}

// decodeHeaders walks the headers object in document order. Names differing
// only in case are distinct entries; an exact repeat of a name is rejected.
func decodeHeaders(data, clean []byte) ([]Header, error) {
	obj := gjson.GetBytes(clean, "headers")
	headers := []Header{}
	seen := make(map[string]bool)

	var dupErr error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if seen[name] {
			offset := value.Index
			if offset == 0 {
				offset = obj.Index
			}
			dupErr = malformedAt(data, offset, "headers: duplicate header %q", name)
			return false
		}
		seen[name] = true

		h := Header{Name: name}
		if value.Type != gjson.Null {
			v := value.String()
			h.Value = &v
		}
		headers = append(headers, h)
		return true
	})
	if dupErr != nil {
		return nil, dupErr
	}
	return headers, nil
}

func syntaxError(data []byte, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		// Offset counts the bytes read, including the offending one.
		return malformedAt(data, int(syn.Offset)-1, "%s", syn.Error())
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return malformedAt(data, int(typ.Offset)-1, "%s", typ.Error())
	}
	return malformedAt(data, 0, "%s", err.Error())
}

