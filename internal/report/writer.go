// Package report persists the finished crawl document: a {siteId}.json
// file by default, or a MongoDB collection when configured.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// Writer persists one crawl output document.
type Writer interface {
	Write(ctx context.Context, out *types.CrawlOutput) error
	Close() error
}

// New creates the writer selected by the configuration.
func New(cfg *config.Config, logger *slog.Logger) (Writer, error) {
	switch cfg.Output.Type {
	case "json":
		return NewFileWriter(cfg.Output.Dir, logger), nil
	case "mongo":
		return NewMongoWriter(cfg.Output.MongoURI, cfg.Output.MongoDatabase, cfg.Output.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unsupported output type: %s", cfg.Output.Type)
	}
}

// FileWriter writes the document to {siteId}.json under the output dir.
type FileWriter struct {
	dir    string
	logger *slog.Logger

	// Path of the last written file, for the CLI summary.
	LastPath string
}

// NewFileWriter creates a JSON file writer.
func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	return &FileWriter{
		dir:    dir,
		logger: logger.With("component", "file_writer"),
	}
}

func (w *FileWriter) Write(_ context.Context, out *types.CrawlOutput) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.dir, out.SiteID+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	w.LastPath = path
	w.logger.Info("report written", "path", path, "pages", out.TotalPages)
	return nil
}

func (w *FileWriter) Close() error { return nil }
