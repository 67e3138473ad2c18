// Package flagx lets several independent loaders share one command line:
// each loader picks out only the flags it owns and parses those.
package flagx

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags.
//
// Both "-name value" and "-name=value" spellings are recognised. A value is
// taken from the following argument only when it does not itself start with
// a dash. Order is preserved and the result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") {
			if name, _, ok := strings.Cut(arg, "="); ok {
				if _, keep := allowed[name]; keep {
					filtered = append(filtered, arg)
				}
				continue
			}
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given with -c or -config.
// The last occurrence wins; an empty path means no file was requested.
// A flag given without a value is an error.
func ConfigPath(args []string) (string, error) {
	var path string

	fs := flag.NewFlagSet("config-path", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	if err := fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"})); err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}

	return path, nil
}
