// Package document decodes callsy request documents.
//
// A request document is a JSON object describing a single HTTP request:
//
//	{
//	  "url": "https://example.com/items",
//	  "method": "post",
//	  "headers": {"content-type": "application/json", "content-length": null},
//	  "body": "{\"name\": \"widget\"}"
//	}
//
// It provides functionality for:
//   - Accepting comments and trailing commas (JSONC) without shifting error positions
//   - Reporting syntax and structure problems with a line and column
//   - Preserving header order and case-variant duplicates
package document
