package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/config"
	"mysteryweb/internal/layout"
	"mysteryweb/internal/logger"
	"mysteryweb/internal/source"
	"mysteryweb/internal/source/postgres"
)

// session is the per-command wiring: config, logger, and an open source.
type session struct {
	cfg *config.ProjectConfig
	log logger.Logger
	src source.Source
}

func openSession(ctx context.Context) (*session, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if datasetPath != "" {
		cfg.Source = config.SourceConfig{Kind: string(source.KindFile), Path: datasetPath}
	}
	log := logger.NewConsole(logger.ConsoleParams{Debug: debugLog || cfg.Log.Debug, Prefix: "mysteryweb"})

	src, err := openSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, src: src}, nil
}

func (s *session) Close(ctx context.Context) {
	if err := s.src.Close(ctx); err != nil {
		s.log.Warn("closing source", "err", err)
	}
}

func (s *session) newBuilder() (*builder.Builder, *builder.Recorder) {
	recorder := builder.NewRecorder()
	b := builder.New(
		builder.WithLogger(s.log),
		builder.WithMetrics(recorder),
		builder.WithLayout(layout.New(s.log)),
	)
	return b, recorder
}

func openSource(ctx context.Context, cfg *config.ProjectConfig, log logger.Logger) (source.Source, error) {
	kind, err := source.ParseKind(cfg.Source.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case source.KindMarkdown:
		return source.NewMarkdown(cfg.Source.Paths, cfg.Source.Exclude, log), nil
	case source.KindPostgres:
		db, err := openDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return source.NewFile(cfg.Source.Path), nil
	}
}

func openDB(ctx context.Context, cfg *config.ProjectConfig, log logger.Logger) (*postgres.Client, error) {
	if cfg.Source.DSN == "" {
		return nil, fmt.Errorf("no postgres dsn configured (set source.dsn or %s)", config.EnvDSN)
	}
	return postgres.New(ctx, cfg.Source.DSN, log)
}

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the postgres entity store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the entity tables",
		Args:  cobra.NoArgs,
		RunE:  runDBInit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <dataset-file>",
		Short: "Upsert a YAML/JSON dataset into postgres",
		Args:  cobra.ExactArgs(1),
		RunE:  runDBImport,
	})
	return cmd
}

func loadConfig() (*config.ProjectConfig, logger.Logger, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewConsole(logger.ConsoleParams{Debug: debugLog || cfg.Log.Debug, Prefix: "mysteryweb"})
	return cfg, log, nil
}

func runDBInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	cmd.Println("Schema ready.")
	return nil
}

func runDBImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := source.NewFile(args[0]).Load(ctx)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := db.Import(ctx, data); err != nil {
		return err
	}
	cmd.Printf("Imported %d characters, %d elements, %d puzzles, %d timeline events.\n",
		len(data.Characters), len(data.Elements), len(data.Puzzles), len(data.Timeline))
	return nil
}
