package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/megasession/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API host (default from Config)
//	-t int      per-request timeout in seconds (default from Config)
//	-v          verbose wire logging
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, so that subcommand arguments pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"}, "-v")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Host, "a", cfg.Host, "API host")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "per-request timeout (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose wire logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only overrides when given, so a sub-second JSON timeout survives.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
