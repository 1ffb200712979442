package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and the problems
// found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	out.Log.Level = lower(out.Log.Level)
	out.Log.Format = lower(out.Log.Format)
	out.Storage.Driver = lower(out.Storage.Driver)
	out.Attachments.Backend = lower(out.Attachments.Backend)
	out.App.Host = strings.TrimSpace(out.App.Host)

	var exts []string
	seen := map[string]bool{}
	for _, e := range out.Attachments.AllowedExtensions {
		e = lower(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		exts = append(exts, e)
	}
	out.Attachments.AllowedExtensions = exts

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.Host != "" && out.App.Host != "127.0.0.1" && out.App.Host != "localhost" && out.App.Host != "::1" {
		res.addWarn("app.host is %q; the admin endpoints have no authentication.", out.App.Host)
	}

	if out.Log.Level == "" {
		out.Log.Level = "info"
	}
	if _, err := logrus.ParseLevel(out.Log.Level); err != nil {
		res.addErr("log.level %q is not a valid level", out.Log.Level)
	}
	switch out.Log.Format {
	case "", "text", "json":
	default:
		res.addErr("log.format must be text or json")
	}

	switch out.Storage.Driver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(out.Storage.SQLitePath) != "" {
			res.addWarn("storage.sqlite_path is set; applications will outlive the process.")
		}
	default:
		res.addErr("storage.driver must be memory or sqlite")
	}

	switch out.Attachments.Backend {
	case "disk":
		if strings.TrimSpace(out.Attachments.Dir) == "" {
			res.addErr("attachments.dir is required when attachments.backend=disk")
		} else if sameDir(out.App.DataDir, out.Attachments.Dir) {
			res.addErr("attachments.dir must not be the data dir itself; use a subdirectory such as images")
		}
		if out.Attachments.SweepSeconds < 0 {
			res.addErr("attachments.sweep_seconds must be >= 0")
		} else if out.Attachments.SweepSeconds > 0 && out.Attachments.SweepGraceSeconds < 60 {
			res.addWarn("attachments.sweep_grace_seconds is very low (%d); uploads in flight may be swept.", out.Attachments.SweepGraceSeconds)
		}
	case "sqlite":
	case "s3":
		if strings.TrimSpace(out.Attachments.S3.Bucket) == "" {
			res.addErr("attachments.s3.bucket is required when attachments.backend=s3")
		}
		if strings.TrimSpace(out.Attachments.S3.Region) == "" {
			res.addErr("attachments.s3.region is required when attachments.backend=s3")
		}
	default:
		res.addErr("attachments.backend must be disk, sqlite or s3")
	}

	if out.Attachments.MaxBytes <= 0 {
		res.addErr("attachments.max_bytes must be > 0")
	} else if out.Attachments.MaxBytes > 50<<20 {
		res.addWarn("attachments.max_bytes is %d; uploads are held in memory while validated.", out.Attachments.MaxBytes)
	}
	if len(out.Attachments.AllowedExtensions) == 0 {
		res.addErr("attachments.allowed_extensions must have at least 1 entry")
	}
	for _, e := range out.Attachments.AllowedExtensions {
		switch e {
		case ".pdf", ".doc", ".docx":
		default:
			res.addErr("attachments.allowed_extensions: %q is not a supported document type", e)
		}
	}

	if out.RateLimit.SubmitPerMinute < 0 {
		res.addErr("rate_limit.submit_per_minute must be >= 0")
	}
	if out.RateLimit.SubmitPerMinute > 0 && out.RateLimit.Burst <= 0 {
		res.addErr("rate_limit.burst must be > 0 when rate limiting is enabled")
	}

	return out, res
}

// sameDir reports whether dir, relative to dataDir unless absolute, names
// dataDir.
func sameDir(dataDir, dir string) bool {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(dataDir, dir)
	}
	a, err1 := filepath.Abs(dir)
	b, err2 := filepath.Abs(dataDir)
	return err1 == nil && err2 == nil && a == b
}
