// Package main is the patsearch CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/cli"
	"github.com/hyperjump/patsearch/internal/config"
	"github.com/hyperjump/patsearch/internal/indexer"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/search"
	"github.com/hyperjump/patsearch/internal/server"
	"github.com/hyperjump/patsearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/patsearch/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence, and built-in defaults are used when neither file exists.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, err := config.Load(fallback)
				if err != nil {
					return nil, "", err
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys for remote embedding providers may live in .env.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "ingest":
		runIngest()
	case "embed":
		runEmbed()
	case "search":
		runSearch()
	case "similar":
		runSimilar()
	case "stats":
		runStats()
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("patsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers flags shared by every subcommand.
type commonFlags struct {
	config *string
	debug  *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", defaultConfigPath, "config file path"),
		debug:  fs.Bool("debug", false, "enable debug logging"),
	}
}

// setup loads config, creates the logger and initializes components, exiting on failure.
func setup(cf commonFlags, builderOpts ...indexer.BuilderOption) *Components {
	cfg, resolvedPath, err := loadConfig(*cf.config)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *cf.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolvedPath == "" {
		resolvedPath = "(defaults)"
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath), zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, builderOpts...)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return components
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	cf := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	c := setup(cf)
	defer c.Logger.Sync()
	defer c.Close()

	ctx, cancel := signalContext()
	defer cancel()

	docs, report, err := c.ingestDocuments(ctx)
	if err != nil {
		c.Logger.Fatal("Ingest failed", zap.Error(err))
	}
	fmt.Printf("Ingested %d patents from %d files\n", len(docs), len(report.Files))
	for path, reason := range report.Skipped {
		fmt.Printf("  skipped %s: %s\n", path, reason)
	}
	_ = cli.WriteCorpusStats(os.Stdout, models.ComputeCorpusStats(docs), cli.OutputText)
}

func runEmbed() {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	cf := addCommonFlags(fs)
	rebuild := fs.Bool("rebuild", false, "recompute embeddings even when stored ones exist")
	_ = fs.Parse(os.Args[2:])

	c := setup(cf, indexer.WithProgress(func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rEmbedding patents: %d/%d", done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}))
	defer c.Logger.Sync()
	defer c.Close()

	ctx, cancel := signalContext()
	defer cancel()

	docs, err := c.documents(ctx)
	if err != nil {
		c.Logger.Fatal("Failed to load documents", zap.Error(err))
	}
	start := time.Now()
	build := c.Builder.Build
	if *rebuild {
		build = c.Builder.Rebuild
	}
	corpus, err := build(ctx, docs)
	if err != nil {
		c.Logger.Fatal("Embedding failed", zap.Error(err))
	}
	fmt.Printf("Embeddings ready: %d patents x %d dimensions (%s store, %s)\n",
		corpus.Len(), corpus.Dimensions(), c.Store.Kind(), time.Since(start).Round(time.Millisecond))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	cf := addCommonFlags(fs)
	classification := fs.String("classification", "", "classification code prefix, e.g. B60B")
	title := fs.String("title", "", "title must contain this text (case-insensitive)")
	kw := fs.String("keyword", "", "full-text keyword the patent must match")
	topK := fs.Int("top-k", 0, "number of results (default from config)")
	output := fs.String("output", "text", "output format: text or json")
	abstracts := fs.Bool("abstracts", true, "show abstract previews in text output")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	c := setup(cf)
	defer c.Logger.Sync()
	defer c.Close()

	ctx, cancel := signalContext()
	defer cancel()

	spec := models.FilterSpec{ClassificationPrefix: *classification, TitleContains: *title, Keyword: *kw}.Normalize()
	engine, err := c.buildEngine(ctx, spec.Keyword != "")
	if err != nil {
		c.Logger.Fatal("Failed to prepare search", zap.Error(err))
	}
	resp, err := engine.Query(ctx, query, c.Config.Search.ClampTopK(*topK), spec)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, format, *abstracts); err != nil {
		fmt.Printf("Failed to write results: %v\n", err)
		os.Exit(1)
	}
}

func runSimilar() {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	cf := addCommonFlags(fs)
	topK := fs.Int("top-k", 0, "number of similar patents (default from config)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: patsearch similar [flags] <document-number>")
		os.Exit(1)
	}
	id := fs.Arg(0)
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	c := setup(cf)
	defer c.Logger.Sync()
	defer c.Close()

	ctx, cancel := signalContext()
	defer cancel()

	engine, err := c.buildEngine(ctx, false)
	if err != nil {
		c.Logger.Fatal("Failed to prepare search", zap.Error(err))
	}
	resp, err := engine.Similar(ctx, id, c.Config.Search.ClampTopK(*topK))
	if errors.Is(err, search.ErrDocumentNotFound) {
		fmt.Printf("Patent %s not found in database.\n", id)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Similarity search failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputText {
		fmt.Printf("\nFound %d patents similar to %s\n", len(resp.Results), id)
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, format, true); err != nil {
		fmt.Printf("Failed to write results: %v\n", err)
		os.Exit(1)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cf := addCommonFlags(fs)
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	c := setup(cf)
	defer c.Logger.Sync()
	defer c.Close()

	docs, err := c.documents(context.Background())
	if err != nil {
		c.Logger.Fatal("Failed to load documents", zap.Error(err))
	}
	if err := cli.WriteCorpusStats(os.Stdout, models.ComputeCorpusStats(docs), format); err != nil {
		fmt.Printf("Failed to write stats: %v\n", err)
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	cf := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	c := setup(cf)
	defer c.Logger.Sync()
	defer c.Close()
	logger := c.Logger

	engine, err := c.buildEngine(context.Background(), true)
	if err != nil {
		logger.Fatal("Failed to prepare search", zap.Error(err))
	}

	srv := server.NewServer(engine, c.Config, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`patsearch - Semantic similarity search over patent documents

Usage:
  patsearch ingest [flags]              Load patent JSON files into the catalog
  patsearch embed [flags]               Compute or load corpus embeddings
  patsearch search [flags] <query>      Search patents by meaning
  patsearch similar [flags] <doc-id>    Find patents similar to a patent
  patsearch stats [flags]               Show dataset statistics
  patsearch server [flags]              Start the HTTP server
  patsearch version                     Show version
  patsearch help                        Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/patsearch/config.yaml, or ./config.yaml)
  --debug            Enable debug logging

Embed Flags:
  --rebuild          Recompute embeddings even when stored ones exist

Search Flags:
  --classification string   Classification code prefix (e.g. B60B)
  --title string            Title must contain this text
  --keyword string          Full-text keyword the patent must match
  --top-k int               Number of results (default from config)
  --output string           Output format: text or json (default: text)
  --abstracts               Show abstract previews (default: true)

Similar Flags:
  --top-k int        Number of similar patents (default from config)
  --output string    Output format: text or json (default: text)

Examples:
  patsearch ingest
  patsearch embed --rebuild
  patsearch search electric vehicle battery management
  patsearch search --classification B60B --title wheel "hub assembly"
  patsearch similar --top-k 5 PATENT_42
  patsearch stats --output json`)
}
