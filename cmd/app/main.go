package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/solheim/lesa/internal"
	"github.com/solheim/lesa/internal/docservice"
	"github.com/solheim/lesa/internal/export"
	"github.com/solheim/lesa/internal/imagestore"
	"github.com/solheim/lesa/internal/index"
	"github.com/solheim/lesa/internal/markdown"
	"github.com/solheim/lesa/internal/mcpserver"
	"github.com/solheim/lesa/internal/storage"
	pkgconfig "github.com/solheim/lesa/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// buildService wires a document service against the configured workspace,
// for the render, export and mcp subcommands that run without the HTTP server.
func buildService(cfg *internal.Config, logger *slog.Logger) (*docservice.Service, func(), error) {
	if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create workspace dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Workspace.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	images := imagestore.New()
	renderer := markdown.NewRenderer(
		markdown.WithImageResolver(docservice.Resolver(store, images)),
		markdown.WithLogger(logger),
	)
	exporter := export.NewManager(renderer, logger)
	svc := docservice.NewService(store, db, renderer, exporter, images)
	return svc, func() { db.Close() }, nil
}

func renderCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: lesa render <path>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	svc, closeFn, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.RenderDocument(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(res.HTML)
	return nil
}

func exportCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: lesa export <path>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	svc, closeFn, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	format := cmd.String("format")
	f, err := svc.Export(ctx, cmd.Args().First(), format)
	if err != nil {
		return err
	}

	out := cmd.String("output")
	if out == "" {
		out = f.Name
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(out, f.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("wrote %s (%d bytes, %s)\n", out, len(f.Data), f.MIME)
	return nil
}

func mcpCmd(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	svc, closeFn, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "lesa",
		Usage:  "Markdown workspace server with live preview, full-text search, and document export",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "render",
				Usage:     "Render a workspace document to HTML on stdout",
				ArgsUsage: "<path>",
				Action:    renderCmd,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:      "export",
				Usage:     "Export a workspace document to a file",
				ArgsUsage: "<path>",
				Action:    exportCmd,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + strings.Join(export.Formats(), ", "),
						Value:   "html",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to the document name with the format extension)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve documents over the Model Context Protocol on stdio",
				Action: mcpCmd,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
