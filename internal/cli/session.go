package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/notesql/internal/config"
	"github.com/roach88/notesql/internal/logging"
	"github.com/roach88/notesql/internal/model"
	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/schema"
	"github.com/roach88/notesql/internal/store"
)

// session is everything a data command needs: resolved config, the table
// registry, and a facade over an open database.
type session struct {
	cfg    *config.Config
	reg    *schema.Registry
	logger *slog.Logger
	db     *store.DB
	facade *store.Facade
}

func (s *session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// loadConfig resolves config and applies command-line overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Loader{File: opts.ConfigFile}.Load()
	if err != nil {
		return nil, err
	}
	if opts.Database != "" {
		cfg.DatabaseURL = opts.Database
	}
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.SchemaDir != "" {
		cfg.SchemaDir = opts.SchemaDir
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRegistry builds the registry from CUE files when a schema directory
// is configured, and from the built-in record types otherwise.
func loadRegistry(cfg *config.Config) (*schema.Registry, error) {
	if cfg.SchemaDir == "" {
		return schema.Build(model.Definitions()...)
	}
	defs, err := schema.LoadCUE(cfg.SchemaDir)
	if err != nil {
		return nil, err
	}
	return schema.Build(defs...)
}

// openSession loads config and schemas and opens the database. Errors are
// reported through f.
func openSession(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, f.failWith(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, f.failWith(ExitCommandError, ErrCodeSchema, "failed to load schemas", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, f.failWith(ExitCommandError, ErrCodeConfig, "invalid logging config", err)
	}

	f.VerboseLog("Opening %s database %s", cfg.Driver, cfg.DatabaseURL)
	db, err := store.Open(cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return nil, f.failWith(ExitCommandError, string(query.ErrCodeConnectionAcquisition), "failed to open database", err)
	}

	facade := db.Facade(
		store.WithLogger(logger),
		store.WithFullTableDelete(cfg.AllowFullTableDelete),
	)
	return &session{cfg: cfg, reg: reg, logger: logger, db: db, facade: facade}, nil
}

// lookup resolves a table name against the registry.
func (s *session) lookup(table string) (*schema.Schema, error) {
	sch, ok := s.reg.Lookup(table)
	if !ok {
		return nil, query.NewUnknownTableError(table)
	}
	return sch, nil
}
