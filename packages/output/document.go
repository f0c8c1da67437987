package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/callsy/packages/http"
	"golang.org/x/net/html/charset"
)

// DefaultOutputFile is where the output document is written when no path is given.
const DefaultOutputFile = "response.json"

// Document is the persisted form of a response.
type Document struct {
	StatusCode string            `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// BodyDecodeError reports a response body that could not be turned into text.
type BodyDecodeError struct {
	Err error
}

func (e *BodyDecodeError) Error() string {
	return fmt.Sprintf("failed to get text from response body: %v", e.Err)
}

func (e *BodyDecodeError) Unwrap() error {
	return e.Err
}

// Project converts resp into a Document. Header values that are not text
// are dropped; an undecodable body fails the whole projection.
func Project(resp *http.InboundResponse) (*Document, error) {
	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[strings.ToLower(name)] = headerText(values)
	}

	body, err := DecodeBody(resp.Body, resp.ContentType())
	if err != nil {
		return nil, &BodyDecodeError{Err: err}
	}

	return &Document{
		StatusCode: strconv.Itoa(resp.StatusCode),
		Headers:    headers,
		Body:       body,
	}, nil
}

// headerText joins the text values with ", ". A value with bytes outside
// visible ASCII, space and tab has no text form and is left out; a header
// with no text values at all becomes "".
func headerText(values []string) string {
	text := make([]string, 0, len(values))
	for _, v := range values {
		if isHeaderText(v) {
			text = append(text, v)
		}
	}
	return strings.Join(text, ", ")
}

func isHeaderText(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b != '\t' && (b < 0x20 || b > 0x7e) {
			return false
		}
	}
	return true
}

// DecodeBody decodes body using the charset named in contentType. Without a
// charset the body is treated as UTF-8 and invalid sequences are replaced.
func DecodeBody(body []byte, contentType string) (string, error) {
	label := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			label = params["charset"]
		}
	}

	if label == "" {
		return strings.ToValidUTF8(string(body), "\uFFFD"), nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("unsupported charset %q", label)
	}
	if name == "utf-8" {
		return strings.ToValidUTF8(string(body), "\uFFFD"), nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return string(decoded), nil
}

// Marshal serializes doc. Documents built by Project always serialize, so a
// failure here is a bug and panics.
func Marshal(doc *Document) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		panic(fmt.Sprintf("internal error, could not serialize response document: %v", err))
	}
	return buf.Bytes()
}

// Parse reads a document written by Marshal.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Headers == nil {
		doc.Headers = map[string]string{}
	}
	return &doc, nil
}
