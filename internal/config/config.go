// internal/config/config.go
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type S3 struct {
	Bucket   string `yaml:"bucket" json:"bucket"`
	Region   string `yaml:"region" json:"region"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

type Config struct {
	App struct {
		Port        int      `yaml:"port" json:"port"`
		Host        string   `yaml:"host" json:"host"`
		DataDir     string   `yaml:"-" json:"data_dir"` // set by Load: the directory holding the config file
		CorsOrigins []string `yaml:"cors_origins,omitempty" json:"cors_origins"`
	} `yaml:"app" json:"app"`

	Log struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"` // text | json
	} `yaml:"log" json:"log"`

	Storage struct {
		Driver     string `yaml:"driver" json:"driver"`           // memory | sqlite
		SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"` // empty: in-memory sqlite
	} `yaml:"storage" json:"storage"`

	Attachments struct {
		Backend           string   `yaml:"backend" json:"backend"` // disk | sqlite | s3
		Dir               string   `yaml:"dir" json:"dir"`
		MaxBytes          int64    `yaml:"max_bytes" json:"max_bytes"`
		AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions"`
		SweepSeconds      int      `yaml:"sweep_seconds" json:"sweep_seconds"`
		SweepGraceSeconds int      `yaml:"sweep_grace_seconds" json:"sweep_grace_seconds"`
		S3                S3       `yaml:"s3" json:"s3"`
	} `yaml:"attachments" json:"attachments"`

	RateLimit struct {
		SubmitPerMinute int `yaml:"submit_per_minute" json:"submit_per_minute"`
		Burst           int `yaml:"burst" json:"burst"`
	} `yaml:"rate_limit" json:"rate_limit"`
}

// Default is the configuration written on first run.
func Default() Config {
	var cfg Config
	cfg.App.Port = 5000
	cfg.App.Host = "127.0.0.1"
	cfg.App.DataDir = "."
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Storage.Driver = "memory"
	cfg.Attachments.Backend = "disk"
	cfg.Attachments.Dir = "images"
	cfg.Attachments.MaxBytes = 5 << 20
	cfg.Attachments.AllowedExtensions = []string{".pdf", ".doc", ".docx"}
	cfg.Attachments.SweepSeconds = 3600
	cfg.Attachments.SweepGraceSeconds = 900
	cfg.Attachments.S3.Region = "us-east-1"
	cfg.Attachments.S3.Prefix = "resumes"
	cfg.RateLimit.SubmitPerMinute = 6
	cfg.RateLimit.Burst = 3
	return cfg
}

// Load reads a YAML file on top of Default, so keys missing from the file
// keep their default values. Relative storage paths resolve against the
// file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	cfg.App.DataDir = filepath.Dir(path)
	return cfg, err
}
