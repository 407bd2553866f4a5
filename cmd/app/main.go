package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/eristoddle/mdquery-sub000/internal"
	"github.com/eristoddle/mdquery-sub000/internal/index"
	"github.com/eristoddle/mdquery-sub000/internal/indexer"
	"github.com/eristoddle/mdquery-sub000/internal/mcpserver"
	"github.com/eristoddle/mdquery-sub000/internal/queryservice"
	pkgconfig "github.com/eristoddle/mdquery-sub000/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if db := cmd.String("db"); db != "" {
		cfg.SQLite.Path = db
	}
	return cfg, nil
}

func openStore(cmd *cli.Command) (*internal.Config, *index.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	// MCP uses stdout for the protocol; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	svc := queryservice.NewService(db, indexer.New(db, logger))
	return mcpserver.New(svc).ServeStdio()
}

func runIndex(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	ix := indexer.New(db, slog.Default())

	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: index <path>")
	}
	if cmd.Bool("file") {
		if err := ix.IndexFile(path); err != nil {
			return err
		}
		return printJSON(map[string]string{"indexed": path})
	}
	stats, err := ix.IndexDirectory(path, cmd.Bool("recursive"))
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runSync(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	ix := indexer.New(db, slog.Default())

	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: sync <path>")
	}
	stats, err := ix.SyncDirectory(path, cmd.Bool("recursive"))
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runRebuild(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	ix := indexer.New(db, slog.Default())

	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: rebuild <path>")
	}
	stats, err := ix.RebuildIndex(path, cmd.Bool("recursive"))
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runRemove(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	ix := indexer.New(db, slog.Default())

	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: remove <path>")
	}
	removed, err := ix.RemoveFile(path)
	if err != nil {
		return err
	}
	return printJSON(map[string]bool{"removed": removed})
}

func runCleanup(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.CleanupOrphans()
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runValidate(_ context.Context, cmd *cli.Command) error {
	cfg, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	valid, reason := db.IsValid(cfg.Index.MaxAge())
	return printJSON(map[string]any{"valid": valid, "reason": reason})
}

func runVacuum(_ context.Context, cmd *cli.Command) error {
	_, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Vacuum()
}

func main() {
	recursiveFlag := &cli.BoolFlag{
		Name:    "recursive",
		Aliases: []string{"r"},
		Usage:   "Recurse into subdirectories",
		Value:   true,
	}

	cmd := &cli.Command{
		Name:  "mdquery",
		Usage: "Incremental markdown indexer with a queryable SQLite-backed derived store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the SQLite store (overrides config)",
				Sources: cli.EnvVars("MDQUERY_DB"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Incrementally index a directory (or one file with --file)",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					recursiveFlag,
					&cli.BoolFlag{Name: "file", Usage: "Treat path as a single file"},
				},
				Action: runIndex,
			},
			{
				Name:      "sync",
				Usage:     "Reconcile the store with disk (three-way diff)",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{recursiveFlag},
				Action:    runSync,
			},
			{
				Name:      "rebuild",
				Usage:     "Invalidate everything under a root and re-index from scratch",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{recursiveFlag},
				Action:    runRebuild,
			},
			{
				Name:      "remove",
				Usage:     "Remove one file's record and derived rows from the store",
				ArgsUsage: "<path>",
				Action:    runRemove,
			},
			{
				Name:   "cleanup",
				Usage:  "Remove records for deleted files and sweep orphaned derived rows",
				Action: runCleanup,
			},
			{
				Name:   "validate",
				Usage:  "Check store schema, structure, and freshness",
				Action: runValidate,
			},
			{
				Name:   "vacuum",
				Usage:  "Reclaim store space after heavy churn",
				Action: runVacuum,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP query API with a file watcher keeping the store synced",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
