package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
)

// ImportConfig selects where vCards are read from.
type ImportConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// Importer reads contacts from a vCard file or a CardDAV URL.
type Importer struct {
	Fetcher VCardFetcher
}

// NewImporter wires an importer with the default HTTP fetcher.
func NewImporter() *Importer {
	return &Importer{Fetcher: NewHTTPFetcher()}
}

// Fetch acquires the vCard stream and decodes it. Per-card problems are
// returned in the second slice; the error is reserved for source failures,
// including sources that are not vCard data or exceed config.MaxImportSize.
func (im *Importer) Fetch(ctx context.Context, cfg ImportConfig) ([]model.Contact, []error, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.Info(config.MsgImportStarted)

	reader, err := im.acquireStream(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", config.ErrImportFailed, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	contacts, problems := ImportVCard(reader)
	for _, p := range problems {
		if errors.Is(p, ErrSourceTooLarge) {
			return nil, nil, fmt.Errorf("%s: %w", config.ErrImportFailed, ErrSourceTooLarge)
		}
	}

	log.Debug(config.MsgImportDone,
		config.LogKeyAdded, len(contacts),
		config.LogKeySkipped, len(problems),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return contacts, problems, nil
}

func (im *Importer) acquireStream(ctx context.Context, cfg ImportConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		slog.Debug(config.MsgOpenLocal,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyFile, cfg.LocalPath)
		f, err := os.Open(cfg.LocalPath)
		if err != nil {
			return nil, err
		}
		return openVCardStream(f, 0)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}
