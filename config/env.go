package config

import "os"

// Environment variables recognized by LoadConfig.
const (
	EnvConfigFile   = "CLOUDSHARE_CONFIG"
	EnvAPIBaseURL   = "CLOUDSHARE_API_BASE_URL"
	EnvShareBaseURL = "CLOUDSHARE_SHARE_BASE_URL"
	EnvSessionDB    = "CLOUDSHARE_SESSION_DB"
)

// parseEnv overlays cfg with values from the environment. Unset variables
// leave the current values untouched.
func parseEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvShareBaseURL); v != "" {
		cfg.ShareBaseURL = v
	}
	if v := os.Getenv(EnvSessionDB); v != "" {
		cfg.SessionDBPath = v
	}
}
