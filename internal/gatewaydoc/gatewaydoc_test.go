package gatewaydoc_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/moviebooking/docs-gateway/internal/gatewaydoc"
)

var _ = Describe("Gateway document", func() {
	var rendered *gatewaydoc.Rendered

	BeforeEach(func() {
		var err error
		rendered, err = gatewaydoc.Render(gatewaydoc.Build(gatewaydoc.Paths{
			UI:            "/docs",
			SwaggerConfig: "/api-docs/swagger-config",
		}))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should describe the gateway", func() {
		doc := gatewaydoc.Build(gatewaydoc.Paths{UI: "/docs", SwaggerConfig: "/api-docs/swagger-config"})
		Expect(doc.Info.Title).To(Equal("Movie Booking System API Gateway"))
		Expect(doc.Info.Description).To(Equal("Aggregated API documentation for all microservices through API Gateway"))
		Expect(doc.Info.Version).To(Equal("1.0.0"))
		Expect(doc.Paths).To(HaveKey("/docs"))
		Expect(doc.Paths).To(HaveKey("/api-docs/swagger-config"))
		Expect(doc.Paths["/fallback/{service}"]).To(HaveKey("post"))
	})

	It("should declare the bearer JWT scheme and require it", func() {
		doc := gatewaydoc.Build(gatewaydoc.Paths{UI: "/docs", SwaggerConfig: "/api-docs/swagger-config"})
		scheme := doc.Components.SecuritySchemes["Bearer Authentication"]
		Expect(scheme.Type).To(Equal("http"))
		Expect(scheme.Scheme).To(Equal("bearer"))
		Expect(scheme.BearerFormat).To(Equal("JWT"))
		Expect(doc.Security).To(ConsistOf(HaveKey("Bearer Authentication")))
	})

	It("should serve JSON", func() {
		w := httptest.NewRecorder()
		rendered.JSONHandler(w, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
		var doc map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &doc)).To(Succeed())
		Expect(doc["openapi"]).To(Equal("3.0.1"))
		Expect(doc["info"]).To(HaveKeyWithValue("title", "Movie Booking System API Gateway"))
	})

	It("should serve the same document as YAML", func() {
		w := httptest.NewRecorder()
		rendered.YAMLHandler(w, httptest.NewRequest(http.MethodGet, "/api-docs.yaml", nil))

		Expect(w.Header().Get("Content-Type")).To(Equal("application/yaml"))
		var doc map[string]any
		Expect(yaml.Unmarshal(w.Body.Bytes(), &doc)).To(Succeed())
		Expect(doc["info"]).To(HaveKeyWithValue("version", "1.0.0"))
		Expect(doc["paths"]).To(HaveKey("/{service}/api-docs"))
	})
})
