package cmd

import (
	"strings"

	"github.com/spf13/pflag"
)

// normalizeArgs rewrites single-dash long flags such as -request_file into
// the double-dash form pflag expects. Shorthands and everything after "--"
// are left alone.
func normalizeArgs(flags *pflag.FlagSet, args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			name, _, _ := strings.Cut(arg[1:], "=")
			if len(name) > 1 && flags.Lookup(name) != nil {
				arg = "-" + arg
			}
		}
		out = append(out, arg)
	}
	return out
}

// hyphenAliases lets --request-file and friends resolve to the underscore names.
func hyphenAliases(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "request-file":
		name = "request_file"
	case "output-file":
		name = "output_file"
	case "body-output-file":
		name = "body_output_file"
	}
	return pflag.NormalizedName(name)
}
