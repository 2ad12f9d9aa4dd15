// Command iotconsole is a terminal admin console for IoT devices and their
// text-to-speech configuration.
//
// Usage:
//
//	iotconsole [-config path] open /space/9/hardware
//	iotconsole [-config path] devserver
//	iotconsole [-config path] mcp
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/app"
	"github.com/jwulff/iotconsole/internal/config"
	"github.com/jwulff/iotconsole/internal/db"
	"github.com/jwulff/iotconsole/internal/devserver"
	"github.com/jwulff/iotconsole/internal/logging"
	"github.com/jwulff/iotconsole/internal/mcpserver"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Set at build time via -ldflags "-X main.version=1.0.0".
var version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: iotconsole [-config path] <command>

Commands:
  open <path>   open a console page:
                  /space/<id>/hardware           device list
                  /space/<id>/hardware/<device>  device detail
                  /space/<id>/tts                app TTS voices
  devserver     run the local reference backend
  mcp           serve the backend operations as MCP tools on stdio

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", config.DefaultPath(), "config file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	// A bare path opens that page.
	if strings.HasPrefix(args[0], "/") {
		args = append([]string{"open"}, args...)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "open":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runConsole(cfg, args[1])
	case "devserver":
		err = runDevserver(cfg)
	case "mcp":
		err = runMCP(cfg)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(cfg *config.Config, logger *zap.Logger) *api.Client {
	return api.New(cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.APITimeout()),
		api.WithHeaders(cfg.API.Headers),
	)
}

// runConsole shows one page full-screen. Logs go to the configured file since
// the terminal belongs to the UI.
func runConsole(cfg *config.Config, path string) error {
	logger, err := logging.New(cfg.Logging, "iotconsole")
	if err != nil {
		return err
	}
	defer logger.Sync()

	page, err := app.NewPage(path, newClient(cfg, logger), app.Options{
		RequestTimeout: cfg.RequestTimeout(),
		PreviewDelay:   cfg.PreviewDelay(),
	})
	if err != nil {
		return err
	}
	logger.Info("console started", zap.String("path", path), zap.String("backend", cfg.API.BaseURL))

	p := tea.NewProgram(page, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

func runDevserver(cfg *config.Config) error {
	logCfg := cfg.Logging
	logCfg.Path = ""
	logger, err := logging.New(logCfg, "iotconsole-devserver")
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := db.Open(cfg.Devserver.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Devserver.Seed {
		n, err := store.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			logger.Info("seeded voice catalog", zap.Int("voices", n))
		}
	}

	logger.Info("starting devserver",
		zap.String("addr", cfg.Devserver.Addr),
		zap.String("db_path", cfg.Devserver.DBPath),
		zap.String("version", version),
	)
	return devserver.New(store, logger).Run(ctx, cfg.Devserver.Addr)
}

// runMCP serves tools on stdio; stdout carries the protocol, so logs go to
// the configured file or stderr.
func runMCP(cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging, "iotconsole-mcp")
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting mcp server", zap.String("backend", cfg.API.BaseURL))
	return mcpserver.New(newClient(cfg, logger), logger, version).ServeStdio()
}
