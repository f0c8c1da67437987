// Package cmd implements the callsy CLI using Cobra.
//
// callsy has a single root command and no subcommands. It reads a request
// document, sends the request it describes and writes the response
// document. Long flags are accepted with one or two dashes
// (-request_file, --request_file) and with hyphens (--request-file).
//
// Exit codes are listed in exitcodes.go.
package cmd
