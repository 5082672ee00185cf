// Package config handles runtime configuration, including defaults,
// an optional JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the application.
//
// Fields:
//   - DatabaseDSN: storage DSN; postgres:// selects the pgx driver,
//     anything else the embedded sqlite store.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Do not use
//     the test default in production.
//   - TokenValidityDuration: lifetime of issued access tokens.
type Config struct {
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "file:fhirmeds.db"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 15 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
