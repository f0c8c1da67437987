package cmd

import (
	"io"
	"os"

	"github.com/abdul-hamid-achik/callsy/packages/output"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// NewRootCmd builds the callsy command. It has no subcommands.
func NewRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "callsy",
		Short: "Send one HTTP request described in a file, save the response.",
		Long: `callsy reads a JSON request document, sends the request it describes and
writes the response to a JSON output document.

Request document (default request.json):
  {
    "url": "https://example.com/items",
    "method": "post",
    "headers": {"content-type": "application/json", "content-length": null},
    "body": "{\"name\": \"widget\"}"
  }

A null header value is derived when possible (content-length); body_path
reads the body from a file instead of body.

Examples:
  callsy
  callsy -request_file req.json -output_file out.json
  callsy -r req.json -b sent-body.txt --yes`,
		Version:       version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts)
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("callsy version {{.Version}}\nBuilt: " + buildTime + "\n")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	registerFlags(cmd, opts)
	return cmd
}

// Execute runs callsy with the process arguments and exits.
func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(normalizeArgs(root.Flags(), args))

	if err := root.Execute(); err != nil {
		noColor, _ := root.Flags().GetBool("no-color")
		formatter := output.NewConsoleFormatter(
			output.WithWriter(stderr),
			output.WithNoColor(noColor || !isTerminal(stderr)),
		)
		formatter.FormatError(err)
		return exitCode(err)
	}
	return ExitSuccess
}
