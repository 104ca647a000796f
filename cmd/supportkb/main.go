// File path: cmd/supportkb/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wolfthemes/supportkb/internal/api"
	"github.com/wolfthemes/supportkb/internal/common"
	"github.com/wolfthemes/supportkb/internal/index"
	"github.com/wolfthemes/supportkb/internal/kb"
	"github.com/wolfthemes/supportkb/internal/llm"
	"github.com/wolfthemes/supportkb/internal/retriever"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("supportkb: .env file not loaded", "error", err)
	} else {
		logger.Info("supportkb: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dataDir := flag.String("data", "", "path to the source data root (overrides SUPPORTKB_DATA_DIR)")
	indexDir := flag.String("index-dir", "", "path to the persisted index directory (overrides SUPPORTKB_INDEX_DIR)")
	topK := flag.Int("topk", 0, "candidate count per query (overrides SUPPORTKB_TOPK)")
	flag.Parse()

	cfg, err := index.LoadConfig()
	if err != nil {
		logger.Error("supportkb: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*dataDir); trimmed != "" {
		cfg.DataDir = trimmed
	}
	if trimmed := strings.TrimSpace(*indexDir); trimmed != "" {
		cfg.IndexDir = trimmed
	}
	if *topK > 0 {
		cfg.TopK = *topK
	}
	logger.Info("supportkb: startup initiated", "addr", *addr, "data", cfg.DataDir, "index", cfg.IndexDir)

	embedder := llm.NewEmbedder()
	logger.Info("supportkb: embedding backend ready", "backend", embedder.Name())

	records, report := kb.LoadCorpus(cfg.DataDir)
	for _, warning := range report.Warnings() {
		logger.Warn("supportkb: corpus load warning", "detail", warning)
	}

	manager := index.NewManager(cfg, embedder)
	if _, err := manager.LoadOrBuild(ctx, records); err != nil {
		// Serve degenerate "error" answers until a reindex succeeds rather
		// than refusing to start.
		logger.Error("supportkb: index unavailable at startup", "error", err)
	}

	retr := retriever.New(manager, embedder, retriever.WithTopK(cfg.TopK))
	server, err := api.NewServer(retr, manager, cfg.DataDir)
	if err != nil {
		logger.Error("supportkb: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("supportkb: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("supportkb: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
