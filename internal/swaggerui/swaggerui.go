package swaggerui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/moviebooking/docs-gateway/internal/swaggerconfig"
)

const (
	InitializerFile = "/swagger-initializer.js"

	// ConfigSourceHeader names the path that produced server-resolved options.
	ConfigSourceHeader = "X-Docs-Config-Source"

	cacheMaxAge = "max-age=3600"
)

type Options struct {
	Title      string
	UIPath     string
	AssetsURL  string
	ConfigPath string

	// Loader switches the initializer to server mode when set.
	Loader *swaggerconfig.Loader
}

type UI struct {
	opts       Options
	logger     *slog.Logger
	modified   time.Time
	index      []byte
	clientJS   []byte
	serverTmpl *template.Template
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"join": func(identifiers []string) string {
		return strings.Join(identifiers, ",\n      ")
	},
}

// New renders the static parts up front; a template error is a programming
// error surfaced at startup.
func New(opts Options, logger *slog.Logger) (*UI, error) {
	opts.AssetsURL = strings.TrimRight(opts.AssetsURL, "/")
	opts.UIPath = strings.TrimRight(opts.UIPath, "/")

	ui := &UI{
		opts:     opts,
		logger:   logger,
		modified: time.Now().UTC().Truncate(time.Second),
	}

	index, err := renderIndex(opts)
	if err != nil {
		return nil, err
	}
	ui.index = index

	base, err := template.New("defaults").Funcs(funcs).Parse(defaultsTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse defaults template: %w", err)
	}

	clientTmpl, err := template.Must(base.Clone()).New("client").Parse(clientTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse client template: %w", err)
	}
	var buf bytes.Buffer
	err = clientTmpl.Execute(&buf, map[string]any{
		"Defaults":     swaggerconfig.NewBundleOptions(nil),
		"ConfigPath":   opts.ConfigPath,
		"FallbackURLs": swaggerconfig.FallbackURLs(),
	})
	if err != nil {
		return nil, fmt.Errorf("render client initializer: %w", err)
	}
	ui.clientJS = buf.Bytes()

	ui.serverTmpl, err = template.Must(base.Clone()).New("server").Parse(serverTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse server template: %w", err)
	}

	return ui, nil
}

func renderIndex(opts Options) ([]byte, error) {
	tmpl, err := htmltemplate.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Title":           opts.Title,
		"AssetsURL":       opts.AssetsURL,
		"InitializerPath": opts.UIPath + InitializerFile,
	})
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return buf.Bytes(), nil
}

// Mode is "server" when options are resolved by the gateway, "client"
// otherwise.
func (ui *UI) Mode() string {
	if ui.opts.Loader != nil {
		return "server"
	}
	return "client"
}

func (ui *UI) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if ui.handleCache(w, r) {
			return
		}
		_, _ = w.Write(ui.index)
	}
}

func (ui *UI) InitializerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")

		if ui.opts.Loader == nil {
			if ui.handleCache(w, r) {
				return
			}
			_, _ = w.Write(ui.clientJS)
			return
		}

		// The fetch is bounded by the loader's client timeout only.
		opts, source := ui.opts.Loader.Load(context.WithoutCancel(r.Context()))

		var buf bytes.Buffer
		if err := ui.serverTmpl.Execute(&buf, opts); err != nil {
			ui.logger.Error("Failed to render Swagger initializer", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set(ConfigSourceHeader, string(source))
		_, _ = w.Write(buf.Bytes())
	}
}

// handleCache answers 304 when the client copy is at least as new as the
// rendered content, and sets the validators otherwise.
func (ui *UI) handleCache(w http.ResponseWriter, r *http.Request) bool {
	if since := r.Header.Get("If-Modified-Since"); since != "" {
		if t, err := http.ParseTime(since); err == nil && !ui.modified.After(t) {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}

	w.Header().Set("Last-Modified", ui.modified.Format(http.TimeFormat))
	w.Header().Set("Cache-Control", cacheMaxAge)
	return false
}
