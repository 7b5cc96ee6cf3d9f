package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useMemFs swaps AppFs for an in-memory filesystem for the test's duration.
func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	old := AppFs
	fs := afero.NewMemMapFs()
	AppFs = fs
	t.Cleanup(func() { AppFs = old })
	return fs
}

// clearEnv unsets the given variables and restores them after the test.
func clearEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func clearAll(t *testing.T) {
	clearEnv(t,
		"DATABASE_URL",
		"NOTESQL_DATABASE_URL",
		"NOTESQL_DRIVER",
		"NOTESQL_SCHEMA_DIR",
		"NOTESQL_LOG_LEVEL",
		"NOTESQL_LOG_FORMAT",
		"NOTESQL_ALLOW_FULL_TABLE_DELETE",
	)
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func testLoader() Loader {
	return Loader{Dir: "/work", Home: "/home/tester"}
}

func TestLoad_Defaults(t *testing.T) {
	useMemFs(t)
	clearAll(t)

	cfg, err := testLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "notes.db", cfg.DatabaseURL)
	assert.Equal(t, "sqlite3", cfg.Driver)
	assert.Equal(t, "", cfg.SchemaDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.AllowFullTableDelete)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_ConfigFileInDir(t *testing.T) {
	fs := useMemFs(t)
	clearAll(t)
	writeFile(t, fs, "/work/.notesql.yaml", `
database_url: /data/notes.db
driver: sqlite
log_level: debug
log_format: json
allow_full_table_delete: true
`)

	cfg, err := testLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/notes.db", cfg.DatabaseURL)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.AllowFullTableDelete)
	assert.Equal(t, "/work/.notesql.yaml", cfg.ConfigFile)
}

func TestLoad_ConfigFileInHomeConfigDir(t *testing.T) {
	fs := useMemFs(t)
	clearAll(t)
	writeFile(t, fs, "/home/tester/.config/notesql/.notesql.yaml", "schema_dir: /etc/notesql/schema\n")

	cfg, err := testLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/notesql/schema", cfg.SchemaDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := useMemFs(t)
	clearAll(t)
	writeFile(t, fs, "/work/.notesql.yaml", "log_level: debug\n")
	t.Setenv("NOTESQL_LOG_LEVEL", "error")

	cfg, err := testLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_DatabaseURLEnv(t *testing.T) {
	useMemFs(t)
	clearAll(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/notes?sslmode=disable")
	t.Setenv("NOTESQL_DRIVER", "postgres")

	cfg, err := testLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/notes?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "postgres", cfg.Driver)
}

func TestLoad_Dotenv(t *testing.T) {
	fs := useMemFs(t)
	clearAll(t)
	writeFile(t, fs, "/work/.env", "DATABASE_URL=from-dotenv.db\nNOTESQL_LOG_LEVEL=info\nNOTESQL_LOG_FORMAT=json\nUNRELATED=1\n")
	t.Setenv("NOTESQL_LOG_LEVEL", "error")

	cfg, err := testLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv.db", cfg.DatabaseURL)
	assert.Equal(t, "error", cfg.LogLevel, "process environment wins over .env")
	assert.Equal(t, "json", cfg.LogFormat)
	_, set := os.LookupEnv("UNRELATED")
	assert.False(t, set, "process environment is not modified")
}

func TestLoad_DotenvYieldsToAnyBoundEnv(t *testing.T) {
	tests := []struct {
		name   string
		dotenv string
		env    string
		want   string
	}{
		{"prefixed env over bare dotenv", "DATABASE_URL=a.db\n", "NOTESQL_DATABASE_URL", "b.db"},
		{"bare env over prefixed dotenv", "NOTESQL_DATABASE_URL=a.db\n", "DATABASE_URL", "b.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := useMemFs(t)
			clearAll(t)
			writeFile(t, fs, "/work/.env", tt.dotenv)
			t.Setenv(tt.env, "b.db")

			cfg, err := testLoader().Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.DatabaseURL)
		})
	}
}

func TestEnvSet(t *testing.T) {
	clearAll(t)
	assert.False(t, envSet(KeyDatabaseURL))
	assert.False(t, envSet(KeyLogLevel))

	t.Setenv("DATABASE_URL", "x.db")
	assert.True(t, envSet(KeyDatabaseURL))

	t.Setenv("NOTESQL_LOG_LEVEL", "debug")
	assert.True(t, envSet(KeyLogLevel))
}

func TestLoad_DotenvLocalOverridesEverything(t *testing.T) {
	fs := useMemFs(t)
	clearAll(t)
	writeFile(t, fs, "/work/.env", "NOTESQL_LOG_LEVEL=info\n")
	writeFile(t, fs, "/work/.env.local", "NOTESQL_LOG_LEVEL=debug\n")
	t.Setenv("NOTESQL_LOG_LEVEL", "error")

	cfg, err := testLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ExplicitFile(t *testing.T) {
	fs := useMemFs(t)
	clearAll(t)
	writeFile(t, fs, "/etc/notesql.yaml", "database_url: explicit.db\n")

	cfg, err := Loader{Dir: "/work", Home: "/home/tester", File: "/etc/notesql.yaml"}.Load()
	require.NoError(t, err)
	assert.Equal(t, "explicit.db", cfg.DatabaseURL)

	_, err = Loader{Dir: "/work", Home: "/home/tester", File: "/etc/missing.yaml"}.Load()
	assert.Error(t, err)
}

func TestLoad_UnknownDriver(t *testing.T) {
	useMemFs(t)
	clearAll(t)
	t.Setenv("NOTESQL_DRIVER", "oracle")

	_, err := testLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestNormalize_ExpandsHome(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", "/home/tester")

	cfg := &Config{Driver: "sqlite3", DatabaseURL: "~/notes.db", SchemaDir: "~/schema"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "/home/tester/notes.db", cfg.DatabaseURL)
	assert.Equal(t, "/home/tester/schema", cfg.SchemaDir)

	pg := &Config{Driver: "postgres", DatabaseURL: "~not-a-path"}
	require.NoError(t, pg.Normalize())
	assert.Equal(t, "~not-a-path", pg.DatabaseURL, "only SQLite DSNs are paths")
}

func TestKeyForEnv(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"DATABASE_URL", KeyDatabaseURL, true},
		{"NOTESQL_DATABASE_URL", KeyDatabaseURL, true},
		{"NOTESQL_ALLOW_FULL_TABLE_DELETE", KeyAllowFullTableDelete, true},
		{"NOTESQL_", "", false},
		{"HOME", "", false},
	}
	for _, tt := range tests {
		key, ok := keyForEnv(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.key, key, tt.name)
	}
}
