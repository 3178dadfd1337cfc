// config_validation.go - Startup validation of environment configuration.
//
// Validates environment variables at startup to fail fast with clear
// error messages rather than runtime failures.
package server

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigValidationError represents a configuration validation error.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ValidateEnv checks the DD_* environment variables the binary consumes.
// It returns every problem found rather than stopping at the first.
func ValidateEnv() []ConfigValidationError {
	var errs []ConfigValidationError

	add := func(field, message string) {
		errs = append(errs, ConfigValidationError{Field: field, Message: message})
	}

	if addr := os.Getenv("DD_ADDR"); addr != "" && !strings.Contains(addr, ":") {
		add("DD_ADDR", "must be host:port or :port")
	}

	if raw := os.Getenv("DD_SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err != nil {
			add("DD_SESSION_TTL", "must be a duration like 12h or 30m")
		} else if d <= 0 {
			add("DD_SESSION_TTL", "must be positive")
		}
	}

	if raw := os.Getenv("DD_MAX_UPLOAD_BYTES"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n < 0 {
			add("DD_MAX_UPLOAD_BYTES", "must be a non-negative integer")
		}
	}

	if base := os.Getenv("DD_BASE_URL"); base != "" {
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			add("DD_BASE_URL", "must be an absolute URL")
		}
	}

	if os.Getenv("DD_OPS_EMAIL") == "" {
		add("DD_OPS_EMAIL", "operator seed email is required")
	} else if !validateEmail(strings.ToLower(os.Getenv("DD_OPS_EMAIL"))) {
		add("DD_OPS_EMAIL", "must be a valid email address")
	}
	if os.Getenv("DD_OPS_PASSWORD") == "" {
		add("DD_OPS_PASSWORD", "operator seed password is required")
	}

	// S3 settings are all-or-nothing: a partial set means a typo, not a
	// deliberate in-memory deployment.
	s3Vars := []string{"DD_S3_ENDPOINT", "DD_S3_ACCESS_KEY", "DD_S3_SECRET_KEY", "DD_BUCKET"}
	set := 0
	for _, v := range s3Vars {
		if os.Getenv(v) != "" {
			set++
		}
	}
	if set > 0 && set < len(s3Vars) {
		add("DD_S3_*", "either all of DD_S3_ENDPOINT, DD_S3_ACCESS_KEY, DD_S3_SECRET_KEY, DD_BUCKET must be set, or none")
	}

	return errs
}

// FormatValidationErrors renders the errors as one printable block.
func FormatValidationErrors(errs []ConfigValidationError) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
