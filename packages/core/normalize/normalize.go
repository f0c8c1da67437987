// Package normalize turns a decoded request document into a fully specified
// outbound request: body resolved, method validated, every header given a
// concrete value and the URL parsed.
package normalize

import (
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"os"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/callsy/packages/core/document"
	"golang.org/x/net/http/httpguts"
)

// ErrConflictingBodySource is returned when a document sets both body and body_path.
var ErrConflictingBodySource = errors.New("cannot provide both a body and body_path")

type InvalidMethodError struct {
	Method string
	Reason string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("the provided HTTP method %q is invalid: %s", e.Method, e.Reason)
}

type UnresolvableHeaderError struct {
	Name string
}

func (e *UnresolvableHeaderError) Error() string {
	return fmt.Sprintf("cannot derive a value for the %s header, supply a value directly", e.Name)
}

// InvalidHeaderError reports a header name or value that cannot be sent on the wire.
type InvalidHeaderError struct {
	Name   string
	Reason string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("invalid header %q: %s", e.Name, e.Reason)
}

type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// Header is a resolved header. Name keeps the spelling from the document.
type Header struct {
	Name  string
	Value string
}

// OutboundRequest is a request ready to be sent.
type OutboundRequest struct {
	URL     *neturl.URL
	Method  string
	Headers []Header
	Body    string
}

// HTTPHeader converts the headers into an http.Header. Case-variant duplicates
// become separate values of the same canonical key.
func (r *OutboundRequest) HTTPHeader() http.Header {
	h := make(http.Header, len(r.Headers))
	for _, hdr := range r.Headers {
		h.Add(hdr.Name, hdr.Value)
	}
	return h
}

// Methods lists the methods Normalize accepts.
var Methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

// derivers maps lowercase header names to functions computing their value
// from the resolved body.
var derivers = map[string]func(body string) string{
	"content-length": func(body string) string {
		return strconv.Itoa(len(body))
	},
}

// Normalize validates spec and resolves it into an OutboundRequest.
func Normalize(spec *document.RequestSpec) (*OutboundRequest, error) {
	body, err := ResolveBody(spec)
	if err != nil {
		return nil, err
	}

	method, err := ResolveMethod(spec.Method)
	if err != nil {
		return nil, err
	}

	headers, err := ResolveHeaders(spec.Headers, body)
	if err != nil {
		return nil, err
	}

	u, err := ResolveURL(spec.URL)
	if err != nil {
		return nil, err
	}

	return &OutboundRequest{
		URL:     u,
		Method:  method,
		Headers: headers,
		Body:    body,
	}, nil
}

// ResolveBody returns the inline body, the contents of body_path, or "".
// A relative body_path is opened relative to the working directory.
func ResolveBody(spec *document.RequestSpec) (string, error) {
	switch {
	case spec.Body != nil && spec.BodyPath != nil:
		return "", ErrConflictingBodySource
	case spec.BodyPath != nil:
		path := *spec.BodyPath
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &document.InputIOError{What: "body file", Path: path, Err: err}
		}
		return string(data), nil
	case spec.Body != nil:
		return *spec.Body, nil
	default:
		return "", nil
	}
}

// ResolveMethod uppercases method and checks it is a known HTTP method.
func ResolveMethod(method string) (string, error) {
	upper := strings.ToUpper(method)
	if !httpguts.ValidHeaderFieldName(upper) {
		return "", &InvalidMethodError{Method: method, Reason: "not a valid token"}
	}
	for _, m := range Methods {
		if m == upper {
			return upper, nil
		}
	}
	return "", &InvalidMethodError{Method: method, Reason: "unsupported method"}
}

// ResolveHeaders gives every header a concrete value. Null values are derived
// when the name (compared case-insensitively) has a deriver.
func ResolveHeaders(headers []document.Header, body string) ([]Header, error) {
	resolved := make([]Header, 0, len(headers))
	for _, h := range headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return nil, &InvalidHeaderError{Name: h.Name, Reason: "not a valid header name"}
		}

		if h.Value != nil {
			if !httpguts.ValidHeaderFieldValue(*h.Value) {
				return nil, &InvalidHeaderError{Name: h.Name, Reason: "value contains invalid characters"}
			}
			if strings.EqualFold(h.Name, "content-length") && !validContentLength(*h.Value) {
				return nil, &InvalidHeaderError{Name: h.Name, Reason: "value is not a non-negative integer"}
			}
			resolved = append(resolved, Header{Name: h.Name, Value: *h.Value})
			continue
		}

		derive, ok := derivers[strings.ToLower(h.Name)]
		if !ok {
			return nil, &UnresolvableHeaderError{Name: h.Name}
		}
		resolved = append(resolved, Header{Name: h.Name, Value: derive(body)})
	}
	return resolved, nil
}

func validContentLength(v string) bool {
	n, err := strconv.ParseInt(v, 10, 64)
	return err == nil && n >= 0
}

// ResolveURL parses raw as an absolute http or https URL.
func ResolveURL(raw string) (*neturl.URL, error) {
	u, err := neturl.Parse(raw)
	if err != nil {
		return nil, &InvalidURLError{URL: raw, Err: err}
	}
	if !u.IsAbs() {
		return nil, &InvalidURLError{URL: raw, Err: errors.New("URL must be absolute")}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &InvalidURLError{URL: raw, Err: fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &InvalidURLError{URL: raw, Err: errors.New("URL must have a host")}
	}
	return u, nil
}
