package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/stockwatch-jp/supplier-watcher/internal/config"
	"github.com/stockwatch-jp/supplier-watcher/internal/extract"
	"github.com/stockwatch-jp/supplier-watcher/internal/fetcher"
)

// One-shot extraction tester: fetches (or reads) a listing page, runs the
// engine in debug mode and prints the result as JSON.
func main() {
	htmlFile := flag.String("file", "", "read page markup from a file instead of fetching")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extract [-file page.html] <url>")
		os.Exit(2)
	}
	url := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	var body string
	if *htmlFile != "" {
		raw, err := os.ReadFile(*htmlFile)
		if err != nil {
			logger.Error("failed to read file", "path", *htmlFile, "error", err)
			os.Exit(1)
		}
		body = string(raw)
	} else {
		cfg, err := config.Load()
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		f := fetcher.New(cfg.Fetcher, nil, logger)
		body, err = f.Fetch(context.Background(), url)
		if err != nil {
			logger.Error("fetch failed", "url", url, "error", err)
			os.Exit(1)
		}
		if fetcher.Suspect(body) {
			logger.Warn("page looks like an interstitial", "url", url)
		}
	}

	engine := extract.NewDefaultEngine(logger)
	res := engine.Extract(url, body, true)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
