package config

import (
	"encoding/json"
	"os"

	"github.com/memoriesapp/memories/internal/flagx"
	"github.com/memoriesapp/memories/internal/timex"
)

// JsonConfig is the JSON-unmarshalling DTO for Config. It uses
// timex.Duration for interval fields so both "15m" strings and integer
// nanoseconds parse.
type JsonConfig struct {
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	TokenProviders          []string       `json:"token_providers"`
	S3AccessKey             string         `json:"s3_access_key"`
	S3SecretKey             string         `json:"s3_secret_key"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	AssetsDir               string         `json:"assets_dir"`
}

// parseJson overlays values from the JSON file named by -c/-config, when
// present. Unset JSON fields leave the existing Config values alone. An
// unreadable or invalid file panics: a requested config file that cannot be
// honored is a startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionValidityDuration.Duration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if len(c.TokenProviders) > 0 {
		config.TokenProviders = c.TokenProviders
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.AssetsDir != "" {
		config.AssetsDir = c.AssetsDir
	}
}
