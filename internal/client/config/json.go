package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/megasession/internal/flagx"
	"github.com/dmitrijs2005/megasession/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish absent keys from zero values.
type JsonConfig struct {
	Host              *string         `json:"host"`
	Scheme            *string         `json:"scheme"`
	UserAgent         *string         `json:"user_agent"`
	Referer           *string         `json:"referer"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	RetryInitialDelay *timex.Duration `json:"retry_initial_delay"`
	RetryMaxDelay     *timex.Duration `json:"retry_max_delay"`
	RSABits           *int            `json:"rsa_bits"`
	Verbose           *bool           `json:"verbose"`
	TraceDir          *string         `json:"trace_dir"`
}

// parseJson overlays Config with values loaded from a JSON file whose path
// comes from -c or -config. Without either flag it does nothing. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.Host != nil {
		cfg.Host = *jc.Host
	}
	if jc.Scheme != nil {
		cfg.Scheme = *jc.Scheme
	}
	if jc.UserAgent != nil {
		cfg.UserAgent = *jc.UserAgent
	}
	if jc.Referer != nil {
		cfg.Referer = *jc.Referer
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryInitialDelay != nil {
		cfg.RetryInitialDelay = jc.RetryInitialDelay.Duration
	}
	if jc.RetryMaxDelay != nil {
		cfg.RetryMaxDelay = jc.RetryMaxDelay.Duration
	}
	if jc.RSABits != nil {
		cfg.RSABits = *jc.RSABits
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
	if jc.TraceDir != nil {
		cfg.TraceDir = *jc.TraceDir
	}
}
