// Package http sends normalized requests for callsy.
//
// It wraps the standard library's http package with:
//   - A Sender interface so the pipeline can run against fakes
//   - Optional timeout, proxy and TLS verification settings
//   - Complete response buffering before returning
//   - TransportError wrapping for every network, DNS, TLS or protocol failure
package http
