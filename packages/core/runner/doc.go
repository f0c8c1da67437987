// Package runner executes a callsy request document from start to finish.
//
// A run is a fixed chain of steps:
//   - Confirm that existing output files may be overwritten
//   - Load and decode the request document
//   - Normalize it into an outbound request
//   - Send it and wait for the complete response
//   - Project the response into the output document
//   - Stage and commit the output document and optional request body
//
// The first failing step ends the run. Nothing is sent before the overwrite
// checks pass and nothing is written unless every step succeeded.
package runner
