package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the current Config values untouched.
type jsonConfig struct {
	APIBaseURL    *string `json:"api_base_url"`
	ShareBaseURL  *string `json:"share_base_url"`
	SessionDBPath *string `json:"session_db_path"`
}

// parseJSON overlays cfg with values loaded from the JSON file named by the
// CLOUDSHARE_CONFIG environment variable. No variable, no file, no overlay.
func parseJSON(cfg *Config) error {
	path := os.Getenv(EnvConfigFile)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.ShareBaseURL != nil {
		cfg.ShareBaseURL = *jc.ShareBaseURL
	}
	if jc.SessionDBPath != nil {
		cfg.SessionDBPath = *jc.SessionDBPath
	}
	return nil
}
