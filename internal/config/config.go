// Package config loads notesql settings from a config file, the
// environment, and .env files.
//
// Precedence, highest first:
//
//	.env.local
//	process environment (NOTESQL_*, DATABASE_URL)
//	.env
//	config file (.notesql.yaml)
//	defaults
//
// Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/roach88/notesql/internal/querysql"
)

// AppFs is the filesystem config and .env files are read from.
// Tests replace it with afero.NewMemMapFs().
var AppFs = afero.NewOsFs()

// EnvPrefix prefixes every notesql environment variable.
const EnvPrefix = "NOTESQL"

// Keys.
const (
	KeyDatabaseURL          = "database_url"
	KeyDriver               = "driver"
	KeySchemaDir            = "schema_dir"
	KeyLogLevel             = "log_level"
	KeyLogFormat            = "log_format"
	KeyAllowFullTableDelete = "allow_full_table_delete"
)

// Config holds resolved settings.
type Config struct {
	// DatabaseURL is the driver DSN. For SQLite it is a file path; a
	// leading ~ is expanded.
	DatabaseURL string
	Driver      string
	// SchemaDir holds *.cue table definitions. Empty means the built-in
	// record types.
	SchemaDir            string
	LogLevel             string
	LogFormat            string
	AllowFullTableDelete bool

	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// Loader resolves a Config. The zero value searches the working directory
// and the user's home directory.
type Loader struct {
	// Dir is where .notesql.yaml, .env and .env.local are looked up.
	// Default: ".".
	Dir string
	// Home overrides the home directory. Default: homedir.Dir().
	Home string
	// File is an explicit config file. When set, it must exist.
	File string
}

// Load resolves configuration with the default Loader.
func Load() (*Config, error) {
	return Loader{}.Load()
}

// Load resolves configuration.
func (l Loader) Load() (*Config, error) {
	dir := l.Dir
	if dir == "" {
		dir = "."
	}
	home := l.Home
	if home == "" {
		h, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		home = h
	}

	v := viper.New()
	v.SetFs(AppFs)

	v.SetDefault(KeyDatabaseURL, "notes.db")
	v.SetDefault(KeyDriver, "sqlite3")
	v.SetDefault(KeySchemaDir, "")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyAllowFullTableDelete, false)

	if l.File != "" {
		v.SetConfigFile(l.File)
	} else {
		v.SetConfigName(".notesql")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "notesql"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// DATABASE_URL is honoured unprefixed, as deployment tooling sets it.
	if err := v.BindEnv(KeyDatabaseURL, EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := applyDotenv(v, filepath.Join(dir, ".env"), false); err != nil {
		return nil, err
	}
	if err := applyDotenv(v, filepath.Join(dir, ".env.local"), true); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:          v.GetString(KeyDatabaseURL),
		Driver:               v.GetString(KeyDriver),
		SchemaDir:            v.GetString(KeySchemaDir),
		LogLevel:             v.GetString(KeyLogLevel),
		LogFormat:            v.GetString(KeyLogFormat),
		AllowFullTableDelete: v.GetBool(KeyAllowFullTableDelete),
		ConfigFile:           v.ConfigFileUsed(),
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize expands ~ in paths and checks the driver. It is called by
// Load and again by the cli after flags are applied.
func (c *Config) Normalize() error {
	if _, err := querysql.DialectForDriver(c.Driver); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if isSQLite(c.Driver) {
		expanded, err := homedir.Expand(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: database_url: %w", err)
		}
		c.DatabaseURL = expanded
	}
	if c.SchemaDir != "" {
		expanded, err := homedir.Expand(c.SchemaDir)
		if err != nil {
			return fmt.Errorf("config: schema_dir: %w", err)
		}
		c.SchemaDir = expanded
	}
	return nil
}

func isSQLite(driver string) bool {
	return driver == "sqlite3" || driver == "sqlite"
}

// applyDotenv reads a .env file from AppFs. Without overload, variables
// already in the process environment win over the file, as with
// godotenv.Load; with overload the file wins, as with godotenv.Overload.
// The process environment itself is never modified.
func applyDotenv(v *viper.Viper, path string, overload bool) error {
	f, err := AppFs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for name, value := range vars {
		key, ok := keyForEnv(name)
		if !ok {
			continue
		}
		if !overload && envSet(key) {
			continue
		}
		v.Set(key, value)
	}
	return nil
}

// envSet reports whether any process variable bound to key is set.
// database_url is bound to both NOTESQL_DATABASE_URL and DATABASE_URL.
func envSet(key string) bool {
	names := []string{EnvPrefix + "_" + strings.ToUpper(key)}
	if key == KeyDatabaseURL {
		names = append(names, "DATABASE_URL")
	}
	for _, name := range names {
		if _, set := os.LookupEnv(name); set {
			return true
		}
	}
	return false
}

// keyForEnv maps NOTESQL_LOG_LEVEL to log_level and DATABASE_URL to
// database_url. Other variables are ignored.
func keyForEnv(name string) (string, bool) {
	if name == "DATABASE_URL" {
		return KeyDatabaseURL, true
	}
	rest, ok := strings.CutPrefix(name, EnvPrefix+"_")
	if !ok || rest == "" {
		return "", false
	}
	return strings.ToLower(rest), true
}
