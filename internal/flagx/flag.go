// Package flagx picks the flags a component owns out of the full command
// line, so that configuration loading and subcommand dispatch can each parse
// os.Args without tripping over the other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the arguments that belong to allowedFlags, together
// with their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//  3. Switches listed in boolFlags, which never take the next argument:  -v
//
// A separate value is only taken when the next argument does not start with
// '-'. The result is never nil.
func FilterArgs(args []string, allowedFlags []string, boolFlags ...string) []string {
	allowed := make(map[string]bool, len(allowedFlags)+len(boolFlags))
	for _, f := range allowedFlags {
		allowed[f] = false
	}
	for _, f := range boolFlags {
		allowed[f] = true
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		isBool, ok := allowed[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// Positional drops every flag in valueFlags (with its value) and every
// switch in boolFlags from args, returning what remains: the subcommand and
// its arguments.
func Positional(args []string, valueFlags []string, boolFlags ...string) []string {
	owned := FilterArgs(args, valueFlags, boolFlags...)
	out := make([]string, 0, len(args))
	j := 0
	for _, arg := range args {
		if j < len(owned) && owned[j] == arg {
			j++
			continue
		}
		out = append(out, arg)
	}
	return out
}

// JsonConfigFlags returns the config file path given via -c or -config, or
// an empty string.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
