// Package flagx lets several components parse their own subset of the
// command line without tripping over each other's flags.
package flagx

import (
	"flag"
	"strings"
)

// boolFlag mirrors the unexported interface the flag package uses to
// recognise switches that take no separate value.
type boolFlag interface {
	IsBoolFlag() bool
}

// Restrict returns the arguments of args that fs defines, together with
// their values, in their original order. Everything else is dropped.
//
// Both -name and --name spellings are recognised, as are -name=value and
// -name value. Boolean flags never consume the following argument. A "--"
// terminator ends the scan.
func Restrict(args []string, fs *flag.FlagSet) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		name, hasValue := flagName(arg)
		if name == "" {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		out = append(out, arg)
		if hasValue || isBool(f) {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// flagName strips one or two leading dashes and any "=value" suffix.
func flagName(arg string) (name string, hasValue bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name = strings.TrimPrefix(arg[1:], "-")
	if k, _, ok := strings.Cut(name, "="); ok {
		return k, true
	}
	return name, false
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(boolFlag)
	return ok && b.IsBoolFlag()
}

// ConfigFileFlag extracts the config file path given with -c or -config.
// The last occurrence wins. Returns "" when neither flag is present.
func ConfigFileFlag(args []string) string {
	var config string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(Restrict(args, fs))

	return config
}
