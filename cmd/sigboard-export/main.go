// sigboard-export fetches every signal feed once and writes one CSV per
// tab, for piping into spreadsheets or cron jobs. Feeds that are down or
// empty export their demo rows, so the command always produces output.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"sigboard/internal/archive"
	"sigboard/internal/config"
	"sigboard/internal/export"
	"sigboard/internal/feed"
	"sigboard/internal/util"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "config.yaml"
	if v := os.Getenv("SIGBOARD_CONFIG"); v != "" {
		cfgPath = v
	}
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger := util.NewLoggerTo(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	loader := feed.NewLoader(cfg.Feeds.BaseURL, cfg.Feeds.FetchTimeout, logger)

	var arch *archive.Archive
	if cfg.Storage.DataDir != "" {
		arch = archive.New(cfg.Storage.DataDir)
	}

	ctx := context.Background()
	fetched := time.Now()
	all := loader.LoadAll(ctx, feed.Tabs)

	if err := os.MkdirAll(cfg.Export.OutDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating output dir: %v\n", err)
		os.Exit(1)
	}

	for _, tab := range feed.Tabs {
		rows := all[tab]
		if arch != nil && len(rows) > 0 {
			if err := arch.Write(tab, rows, fetched); err != nil {
				logger.Warn("snapshot write failed", "tab", tab, "error", err)
			}
		}

		rows = feed.WithFallback(tab, rows)
		doc := export.Encode(rows, export.Columns(tab))
		path := filepath.Join(cfg.Export.OutDir, export.FileName(tab))
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", path, err)
			os.Exit(1)
		}
		logger.Info("exported", "tab", tab, "rows", len(rows), "path", path)
	}
}
