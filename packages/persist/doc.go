// Package persist guards and performs callsy's writes to disk.
//
// It provides functionality for:
//   - Asking before an existing output file is overwritten
//   - Staging output artifacts and committing them together
package persist
