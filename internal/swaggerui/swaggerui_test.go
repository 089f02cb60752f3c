package swaggerui_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/moviebooking/docs-gateway/internal/swaggerconfig"
	"github.com/moviebooking/docs-gateway/internal/swaggerui"
)

var _ = Describe("UI", func() {
	var (
		log  *slog.Logger
		opts swaggerui.Options
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		opts = swaggerui.Options{
			Title:      "Movie Booking System - API Documentation",
			UIPath:     "/docs/",
			AssetsURL:  "https://cdn.example.com/swagger-ui/",
			ConfigPath: "/api-docs/swagger-config",
		}
	})

	get := func(h http.HandlerFunc, path string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for k, v := range header {
			req.Header[k] = v
		}
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	Describe("IndexHandler", func() {
		It("should render the viewer page", func() {
			ui, err := swaggerui.New(opts, log)
			Expect(err).NotTo(HaveOccurred())

			w := get(ui.IndexHandler(), "/docs", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))

			body := w.Body.String()
			Expect(body).To(ContainSubstring("<title>Movie Booking System - API Documentation</title>"))
			Expect(body).To(ContainSubstring(`<div id="swagger-ui"></div>`))
			Expect(body).To(ContainSubstring(`href="https://cdn.example.com/swagger-ui/swagger-ui.css"`))
			Expect(body).To(ContainSubstring(`src="https://cdn.example.com/swagger-ui/swagger-ui-bundle.js"`))
			Expect(body).To(ContainSubstring(`src="https://cdn.example.com/swagger-ui/swagger-ui-standalone-preset.js"`))
			Expect(body).To(ContainSubstring(`src="/docs/swagger-initializer.js"`))
		})

		It("should escape the title", func() {
			opts.Title = "<script>alert(1)</script>"
			ui, err := swaggerui.New(opts, log)
			Expect(err).NotTo(HaveOccurred())

			Expect(get(ui.IndexHandler(), "/docs", nil).Body.String()).NotTo(ContainSubstring("<script>alert(1)</script>"))
		})

		It("should set caching headers", func() {
			ui, _ := swaggerui.New(opts, log)
			w := get(ui.IndexHandler(), "/docs", nil)
			Expect(w.Header().Get("Cache-Control")).To(Equal("max-age=3600"))
			Expect(w.Header().Get("Last-Modified")).NotTo(BeEmpty())
		})

		It("should answer 304 for a fresh client copy", func() {
			ui, _ := swaggerui.New(opts, log)
			since := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)

			w := get(ui.IndexHandler(), "/docs", http.Header{"If-Modified-Since": {since}})
			Expect(w.Code).To(Equal(http.StatusNotModified))
			Expect(w.Body.Len()).To(BeZero())
		})

		It("should serve the page for a stale client copy", func() {
			ui, _ := swaggerui.New(opts, log)
			since := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)

			w := get(ui.IndexHandler(), "/docs", http.Header{"If-Modified-Since": {since}})
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("InitializerHandler in client mode", func() {
		var body string

		BeforeEach(func() {
			ui, err := swaggerui.New(opts, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(ui.Mode()).To(Equal("client"))

			w := get(ui.InitializerHandler(), "/docs/swagger-initializer.js", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/javascript; charset=utf-8"))
			Expect(w.Header().Get(swaggerui.ConfigSourceHeader)).To(BeEmpty())
			body = w.Body.String()
		})

		It("should fetch the config path", func() {
			Expect(body).To(ContainSubstring(`fetch("/api-docs/swagger-config"`))
		})

		It("should pass validatorUrl with an empty default and configUrl through", func() {
			Expect(body).To(ContainSubstring(`options.validatorUrl = config.validatorUrl || "";`))
			Expect(body).To(ContainSubstring(`options.configUrl = config.configUrl;`))
		})

		It("should log and fall back to the built-in list", func() {
			Expect(body).To(ContainSubstring(`console.error("Failed to load Swagger configuration:", error);`))
			Expect(body).To(ContainSubstring(`{"name":"User Service","url":"/user-service/api-docs"}`))
			Expect(body).To(ContainSubstring(`{"name":"Notification Service","url":"/notification-service/api-docs"}`))
		})

		It("should carry the viewer constants", func() {
			Expect(body).To(ContainSubstring(`dom_id: "#swagger-ui"`))
			Expect(body).To(ContainSubstring(`deepLinking: true`))
			Expect(body).To(ContainSubstring("SwaggerUIBundle.presets.apis,\n      SwaggerUIStandalonePreset"))
			Expect(body).To(ContainSubstring("SwaggerUIBundle.plugins.DownloadUrl"))
			Expect(body).To(ContainSubstring(`layout: "StandaloneLayout"`))
		})
	})

	Describe("InitializerHandler in server mode", func() {
		var upstream *httptest.Server

		AfterEach(func() {
			if upstream != nil {
				upstream.Close()
			}
		})

		serve := func(handler http.HandlerFunc) *httptest.ResponseRecorder {
			upstream = httptest.NewServer(handler)
			opts.Loader = swaggerconfig.NewLoader(swaggerconfig.NewClient(upstream.URL, time.Second), log)
			ui, err := swaggerui.New(opts, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(ui.Mode()).To(Equal("server"))
			return get(ui.InitializerHandler(), "/docs/swagger-initializer.js", nil)
		}

		It("should inline the resolved options", func() {
			w := serve(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"urls":[{"name":"Booking Service","url":"/booking-service/api-docs"}],"configUrl":"/api-docs/swagger-config"}`))
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get(swaggerui.ConfigSourceHeader)).To(Equal("remote"))
			Expect(w.Header().Get("Cache-Control")).To(Equal("no-store"))
			Expect(w.Body.String()).To(ContainSubstring(`bundleDefaults([{"name":"Booking Service","url":"/booking-service/api-docs"}])`))
			Expect(w.Body.String()).To(ContainSubstring(`options.validatorUrl = "";`))
			Expect(w.Body.String()).To(ContainSubstring(`options.configUrl = "/api-docs/swagger-config";`))
		})

		It("should inline the fallback list when the config cannot be loaded", func() {
			w := serve(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			})

			Expect(w.Header().Get(swaggerui.ConfigSourceHeader)).To(Equal("fallback"))
			Expect(w.Body.String()).To(ContainSubstring(`{"name":"Payment Service","url":"/payment-service/api-docs"}`))
			Expect(w.Body.String()).NotTo(ContainSubstring("options.validatorUrl"))
			Expect(w.Body.String()).NotTo(ContainSubstring("options.configUrl"))
		})
	})
})
