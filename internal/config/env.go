package config

import (
	"os"
	"time"
)

// parseEnv overlays configuration values from FILEVAULT_* environment
// variables. Unset variables keep their current values.
func parseEnv(config *Config) {
	envString(&config.DatabaseDSN, "FILEVAULT_DATABASE_DSN")
	envString(&config.BlobBackend, "FILEVAULT_BLOB_BACKEND")
	envString(&config.S3AccessKey, "FILEVAULT_S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "FILEVAULT_S3_SECRET_KEY")
	envString(&config.S3Bucket, "FILEVAULT_S3_BUCKET")
	envString(&config.S3Region, "FILEVAULT_S3_REGION")
	envString(&config.S3BaseEndpoint, "FILEVAULT_S3_BASE_ENDPOINT")
	envString(&config.BlobDir, "FILEVAULT_BLOB_DIR")
	envString(&config.SecretKey, "FILEVAULT_SECRET_KEY")
	envString(&config.SessionFile, "FILEVAULT_SESSION_FILE")
	envString(&config.EncryptionMode, "FILEVAULT_ENCRYPTION_MODE")
	envString(&config.LogFile, "FILEVAULT_LOG_FILE")

	if v, ok := os.LookupEnv("FILEVAULT_SESSION_VALIDITY_DURATION"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionValidityDuration = d
		}
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
