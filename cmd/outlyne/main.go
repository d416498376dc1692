// Package main is the Outlyne CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/classify"
	"github.com/itisrohit/Outlyne/internal/config"
	"github.com/itisrohit/Outlyne/internal/embedding"
	"github.com/itisrohit/Outlyne/internal/encode"
	"github.com/itisrohit/Outlyne/internal/fetch"
	"github.com/itisrohit/Outlyne/internal/models"
	"github.com/itisrohit/Outlyne/internal/recall"
	"github.com/itisrohit/Outlyne/internal/search"
	"github.com/itisrohit/Outlyne/internal/server"
	"github.com/itisrohit/Outlyne/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/outlyne/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "version", "--version", "-v":
		fmt.Printf("outlyne version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Outlyne - sketch-to-image search

Usage:
  outlyne server [-config path] [-debug]   Run the API server
  outlyne search -sketch file [flags]      Search a running server with a sketch
  outlyne version                          Print version

Search flags:
  -sketch path     sketch image file (png/jpeg) [required]
  -query text      optional text hint for recall
  -limit n         maximum results (default 20)
  -server url      server base URL (default http://localhost:8000)
`)
}

// newEmbedder builds the configured embedding backend.
func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Backend {
	case "remote":
		return embedding.NewRemoteEmbedder(cfg.Endpoint, cfg.Dimensions, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
	case "onnx":
		return embedding.NewONNXEmbedder(cfg.VisionModelPath, cfg.TextModelPath, cfg.Dimensions, cfg.MaxTokens)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}
	defer embedder.Close()

	vocab, err := classify.NewVocabulary(cfg.Classify.VocabularyPath, logger)
	if err != nil {
		logger.Fatal("Failed to load vocabulary", zap.Error(err))
	}
	if cfg.Classify.Watch {
		if err := vocab.StartWatching(); err != nil {
			logger.Fatal("Failed to watch vocabulary", zap.Error(err))
		}
	}
	defer vocab.Close()

	adapter := recall.NewDuckDuckGoAdapter(&cfg.Recall, logger)
	orchestrator := search.NewOrchestrator(
		embedder,
		embedding.NewCache(cfg.Cache.Size, cfg.Cache.TTL()),
		adapter,
		fetch.NewFetcher(&cfg.Fetch, logger),
		encode.NewEncoder(embedder, logger),
		classify.NewClassifier(embedder, vocab, logger),
		&cfg.Search,
		logger,
	)

	srv := server.NewServer(orchestrator, embedder, vocab, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
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

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	sketchPath := fs.String("sketch", "", "sketch image file (png/jpeg)")
	query := fs.String("query", "", "optional text hint for recall")
	limit := fs.Int("limit", 20, "maximum results")
	serverURL := fs.String("server", "http://localhost:8000", "server base URL")
	_ = fs.Parse(os.Args[2:])

	if *sketchPath == "" {
		fmt.Println("Error: -sketch is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	raw, err := os.ReadFile(*sketchPath)
	if err != nil {
		fmt.Printf("Failed to read sketch: %v\n", err)
		os.Exit(1)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"sketch_base64": base64.StdEncoding.EncodeToString(raw),
		"query":         *query,
		"max_results":   *limit,
	})
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(*serverURL+"/api/v1/search", "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Search request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		fmt.Printf("Search failed (%d): %s\n", resp.StatusCode, errBody["error"])
		os.Exit(1)
	}

	var result models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Query: %q  (%d results, %dms)\n\n", result.Query, result.Count, result.QueryTime)
	for i, r := range result.Results {
		title := r.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%2d. [%.4f] %s\n    %s\n", i+1, r.SimilarityScore, title, r.URL)
	}
}
