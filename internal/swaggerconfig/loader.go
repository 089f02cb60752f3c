package swaggerconfig

import (
	"context"
	"log/slog"
)

type Loader struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewLoader(fetcher Fetcher, logger *slog.Logger) *Loader {
	return &Loader{fetcher: fetcher, logger: logger}
}

// Load fetches the config once. Any failure is logged and answered with the
// built-in service list, so Load always yields usable options.
func (l *Loader) Load(ctx context.Context) (BundleOptions, Source) {
	cfg, err := l.fetcher.Fetch(ctx)
	if err != nil {
		l.logger.Error("Failed to load Swagger configuration", slog.Any("error", err))
		return NewBundleOptions(FallbackURLs()), SourceFallback
	}

	return FromConfig(cfg), SourceRemote
}
