// Package config loads runtime configuration for the account engine CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API host
//	-t int      per-request timeout (seconds)
//	-v          verbose wire logging
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "host": "g.api.mega.co.nz",
//	  "request_timeout": "60s",
//	  "retry_initial_delay": "10s",
//	  "retry_max_delay": "33h20m",
//	  "rsa_bits": 2048
//	}
//
// Note: This package does not read environment variables; use the JSON file
// or flags.
package config
