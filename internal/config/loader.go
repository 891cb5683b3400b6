package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from the process environment.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct fills tagged fields of v, descending into nested structs.
func loadStruct(v reflect.Value, getenv func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv, getenv); err != nil {
				return err
			}
			continue
		}

		name, value, err := lookup(field.Tag, getenv)
		if err != nil {
			return err
		}
		if name == "" || value == "" {
			continue
		}
		if err := setField(fv, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

// lookup resolves a field's env, envAlt, required and default tags. It
// returns the variable name used in errors and the raw value; an untagged
// field yields an empty name.
func lookup(tag reflect.StructTag, getenv func(string) string) (name, value string, err error) {
	name = tag.Get("env")
	if name == "" {
		return "", "", nil
	}

	value = strings.TrimSpace(getenv(name))
	if alt := tag.Get("envAlt"); value == "" && alt != "" {
		value = strings.TrimSpace(getenv(alt))
	}
	if value != "" {
		return name, value, nil
	}
	if tag.Get("required") == "true" {
		return name, "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return name, tag.Get("default"), nil
}

// setField parses value into field according to the field's type.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	validDataFormats := map[string]bool{"auto": true, "csv": true, "excel": true, "json": true}
	if !validDataFormats[strings.ToLower(c.Data.Format)] {
		errs = append(errs, fmt.Sprintf("GDP_DATA_FORMAT (%q) must be one of: auto, csv, excel, json", c.Data.Format))
	}
	if c.Data.ReloadInterval < 0 {
		errs = append(errs, "GDP_RELOAD_INTERVAL must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}
	if c.Server.MaxUploadSize <= 0 {
		errs = append(errs, "SERVER_MAX_UPLOAD_SIZE must be positive")
	}
	if c.Server.MaxConcurrentRuns < 0 {
		errs = append(errs, "SERVER_MAX_CONCURRENT_RUNS must be non-negative")
	}
	if c.Server.RunWait < 0 {
		errs = append(errs, "SERVER_RUN_WAIT must be non-negative")
	}

	// Export validation
	if c.Export.DatabaseURL != "" {
		if u, err := url.Parse(c.Export.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errs = append(errs, "EXPORT_DATABASE_URL must be a postgres:// or postgresql:// URL")
		}
	}
	if strings.TrimSpace(c.Export.Table) == "" {
		errs = append(errs, "EXPORT_TABLE must not be empty")
	}
	if m := strings.ToLower(c.Export.Mode); m != "append" && m != "replace" {
		errs = append(errs, fmt.Sprintf("EXPORT_MODE (%q) must be one of: append, replace", c.Export.Mode))
	}
	if c.Export.MaxConns <= 0 {
		errs = append(errs, "EXPORT_DB_MAX_CONNS must be positive")
	}
	if c.Export.MinConns < 0 {
		errs = append(errs, "EXPORT_DB_MIN_CONNS must be non-negative")
	}
	if c.Export.MaxConns < c.Export.MinConns {
		errs = append(errs, fmt.Sprintf("EXPORT_DB_MAX_CONNS (%d) must be >= EXPORT_DB_MIN_CONNS (%d)",
			c.Export.MaxConns, c.Export.MinConns))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a representation safe for logging; the database URL is
// masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Export.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Data: {PipelineFile: %q, Source: %q, Format: %q}, ", c.Data.PipelineFile, c.Data.Source, c.Data.Format)
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Export: {DatabaseURL: %q, Table: %q, Mode: %q}, ", dbURL, c.Export.Table, c.Export.Mode)
	fmt.Fprintf(&b, "Security: {AllowedOrigins: %v, DataRoot: %q, APIKeys: %d, TrustedProxies: %v}, ",
		c.Security.AllowedOrigins, c.Security.DataRoot, len(c.Security.APIKeys), c.Security.TrustedProxies)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
