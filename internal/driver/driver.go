// Package driver abstracts the "page driver" the crawl core talks to: a
// single serially reused browser page (or an HTTP stand-in) that can
// navigate, hand back the current document, and run the style extraction
// script. The core only depends on this contract, so tests substitute an
// in-memory fake.
package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/palette"
)

// Driver is the external collaborator contract of the crawl controller.
// Navigate must wait until the page is loaded and settled; the per-page
// timeout is carried by ctx.
type Driver interface {
	Navigate(ctx context.Context, rawURL string) error
	HTML(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Styles(ctx context.Context) (*palette.StyleSnapshot, error)
	Close() error
}

// New creates the driver selected by the configuration.
func New(cfg *config.Config, logger *slog.Logger) (Driver, error) {
	switch cfg.Driver.Type {
	case "browser":
		return NewRodDriver(cfg, logger)
	case "static":
		return NewStaticDriver(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported driver type: %s", cfg.Driver.Type)
	}
}
