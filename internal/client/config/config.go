package config

import "time"

// Config holds runtime settings for the account engine and its CLI.
//
// Fields:
//   - Host: API host the /cs endpoint lives on.
//   - Scheme: URL scheme, "https" outside of tests.
//   - UserAgent, Referer: fixed request headers identifying the client.
//   - RequestTimeout: bound on a single HTTP attempt.
//   - RetryInitialDelay: first backoff delay after a transient failure.
//   - RetryMaxDelay: no retry is scheduled once the next delay exceeds it.
//   - RSABits: modulus size of key pairs generated during verification.
//   - Verbose: log wire payloads at debug level.
//   - TraceDir: when set, every wire event is also written as a JSON line to
//     a new file in this directory.
type Config struct {
	Host              string
	Scheme            string
	UserAgent         string
	Referer           string
	RequestTimeout    time.Duration
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	RSABits           int
	Verbose           bool
	TraceDir          string
}

// LoadDefaults populates c with the production defaults.
func (c *Config) LoadDefaults() {
	c.Host = "g.api.mega.co.nz"
	c.Scheme = "https"
	c.UserAgent = "megasession/1.0"
	c.Referer = "https://mega.nz/"
	c.RequestTimeout = 60 * time.Second
	c.RetryInitialDelay = 10 * time.Second
	c.RetryMaxDelay = 120000000 * time.Millisecond
	c.RSABits = 2048
	c.Verbose = false
	c.TraceDir = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
