// Package output projects responses into callsy's output document and prints
// console summaries.
//
// The output document is a JSON object:
//
//	{"status_code": "200", "headers": {"content-type": "text/plain"}, "body": "ok"}
//
// Header names are lowercased. Header values that are not text are written as
// empty strings; a body that cannot be decoded is an error.
package output
