package swaggerconfig_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/moviebooking/docs-gateway/config"
	"github.com/moviebooking/docs-gateway/internal/catalog"
	"github.com/moviebooking/docs-gateway/internal/swaggerconfig"
)

var _ = Describe("Handler", func() {
	var cat *catalog.Catalog

	BeforeEach(func() {
		var err error
		cat, err = catalog.New([]config.ServiceConfig{
			{ID: "theatre-service", Name: "Theatre Service", DocsPath: "/api-docs", Instances: []config.InstanceConfig{{URL: "http://theatre:8083", Weight: 1}}},
			{ID: "user-service", Name: "User Service", DocsPath: "/api-docs", Instances: []config.InstanceConfig{{URL: "http://user:8081", Weight: 1}}},
		}, "round-robin")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should list services in configuration order", func() {
		w := httptest.NewRecorder()
		swaggerconfig.Handler(cat, "/api-docs/swagger-config", "")(w, httptest.NewRequest(http.MethodGet, "/api-docs/swagger-config", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(w.Body.String()).To(MatchJSON(`{
			"urls": [
				{"name": "Theatre Service", "url": "/theatre-service/api-docs"},
				{"name": "User Service", "url": "/user-service/api-docs"}
			],
			"configUrl": "/api-docs/swagger-config"
		}`))
	})

	It("should include the validator url when configured", func() {
		cfg := swaggerconfig.Build(cat, "/api-docs/swagger-config", "https://validator.swagger.io/validator")
		Expect(*cfg.ValidatorURL).To(Equal("https://validator.swagger.io/validator"))
	})

	It("should list unhealthy services too", func() {
		svc, _ := cat.Lookup("user-service")
		svc.Backends[0].SetHealthy(false)
		Expect(swaggerconfig.Build(cat, "", "").URLs).To(HaveLen(2))
	})

	It("should answer HEAD without a body", func() {
		w := httptest.NewRecorder()
		swaggerconfig.Handler(cat, "/api-docs/swagger-config", "")(w, httptest.NewRequest(http.MethodHead, "/api-docs/swagger-config", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.Len()).To(BeZero())
	})

	It("should reject other methods", func() {
		w := httptest.NewRecorder()
		swaggerconfig.Handler(cat, "/api-docs/swagger-config", "")(w, httptest.NewRequest(http.MethodPost, "/api-docs/swagger-config", nil))
		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(w.Header().Get("Allow")).To(Equal("GET, HEAD"))
	})

	It("should be consumable by the client", func() {
		server := httptest.NewServer(swaggerconfig.Handler(cat, "/api-docs/swagger-config", ""))
		defer server.Close()

		cfg, err := swaggerconfig.NewClient(server.URL, time.Second).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		opts := swaggerconfig.FromConfig(cfg)
		Expect(opts.URLs[0].URL).To(Equal("/theatre-service/api-docs"))
		Expect(*opts.ValidatorURL).To(Equal(""))
		Expect(*opts.ConfigURL).To(Equal("/api-docs/swagger-config"))
	})
})
