// ABOUTME: CLI entrypoint for the mealdash API server.
// ABOUTME: Loads .env and config, opens the database, and runs the HTTP server with signal handling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mealdash/mealdash/i18n"
	"github.com/mealdash/mealdash/server"
	"github.com/mealdash/mealdash/store"
	"github.com/mealdash/mealdash/web"
)

var version = "dev"

// cliConfig holds flag-level overrides; everything else comes from the
// environment via server.ConfigFromEnv.
type cliConfig struct {
	bind        string
	dbPath      string
	showVersion bool
}

func main() {
	if err := server.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("mealdash %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns the CLI overrides.
func parseFlags() cliConfig {
	var cfg cliConfig

	fs := flag.NewFlagSet("mealdash", flag.ContinueOnError)
	fs.StringVar(&cfg.bind, "bind", "", "Listen address (overrides MEALDASH_BIND)")
	fs.StringVar(&cfg.dbPath, "db", "", "SQLite database path (overrides MEALDASH_DB)")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	return cfg
}

// run builds the server from the environment plus flag overrides and blocks
// until shutdown. Returns an exit code.
func run(cli cliConfig) int {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if cli.bind != "" {
		cfg.Bind = cli.bind
	}
	if cli.dbPath != "" {
		cfg.DatabasePath = cli.dbPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("component=main action=close_store error=%v", err)
		}
	}()

	srv := web.NewServer(cfg, st, i18n.NewEmbedded(cfg.DefaultLocale))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	log.Printf("component=main action=listen addr=%s db=%s", cfg.Bind, cfg.DatabasePath)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}
