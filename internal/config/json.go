package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"filevault/internal/timex"
)

// jsonConfig is the intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "12h" and integer nanoseconds. After
// unmarshalling, set fields are copied into the runtime Config.
type jsonConfig struct {
	DatabaseDSN             *string         `json:"database_dsn"`
	BlobBackend             *string         `json:"blob_backend"`
	S3AccessKey             *string         `json:"s3_access_key"`
	S3SecretKey             *string         `json:"s3_secret_key"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	BlobDir                 *string         `json:"blob_dir"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	SessionFile             *string         `json:"session_file"`
	EncryptionMode          *string         `json:"encryption_mode"`
	LogFile                 *string         `json:"log_file"`
}

// parseJSON overlays configuration values from the JSON file at path onto the
// provided Config. An empty path is a no-op; absent keys keep their current
// values.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.BlobDir, c.BlobDir)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SessionFile, c.SessionFile)
	setString(&config.EncryptionMode, c.EncryptionMode)
	setString(&config.LogFile, c.LogFile)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = time.Duration(c.SessionValidityDuration.Duration)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
