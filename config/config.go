// Package config holds runtime settings for the CloudShare client.
package config

// Config holds runtime settings.
//
// Fields:
//   - APIBaseURL: base URL of the CloudShare REST API, including any path
//     prefix (e.g. http://localhost:3000/api).
//   - ShareBaseURL: base URL used to present share links when the server
//     response does not already carry a full shareUrl. Optional.
//   - SessionDBPath: path of the local SQLite database persisting the auth
//     session.
type Config struct {
	APIBaseURL    string
	ShareBaseURL  string
	SessionDBPath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000/api"
	c.ShareBaseURL = ""
	c.SessionDBPath = "cloudshare.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON file (if configured) and environment variables. Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}
