// config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies environment overrides on top of the file config.
// PORT matches what hosting platforms set.
func OverlayEnv(cfg *Config) {
	if v, ok := lookup("PORT"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v, ok := lookup("INTAKE_HOST"); ok {
		cfg.App.Host = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("INTAKE_STORAGE_DRIVER"); ok {
		cfg.Storage.Driver = v
	}
	if v, ok := lookup("INTAKE_SQLITE_PATH"); ok {
		cfg.Storage.SQLitePath = v
	}
	if v, ok := lookup("INTAKE_ATTACHMENTS_BACKEND"); ok {
		cfg.Attachments.Backend = v
	}
	if v, ok := lookup("INTAKE_S3_BUCKET"); ok {
		cfg.Attachments.S3.Bucket = v
	}
	if v, ok := lookup("AWS_REGION"); ok {
		cfg.Attachments.S3.Region = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
