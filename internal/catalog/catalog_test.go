package catalog_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/moviebooking/docs-gateway/config"
	"github.com/moviebooking/docs-gateway/internal/catalog"
)

var _ = Describe("Catalog", func() {
	var (
		cat      *catalog.Catalog
		services []config.ServiceConfig
	)

	BeforeEach(func() {
		services = []config.ServiceConfig{
			{
				ID: "user-service", Name: "User Service", DocsPath: "/api-docs",
				Instances: []config.InstanceConfig{{URL: "http://localhost:8081", Weight: 1}},
			},
			{
				ID: "theatre-service", Name: "Theatre Service", DocsPath: "/v3/api-docs",
				Instances: []config.InstanceConfig{
					{URL: "http://localhost:8083", Weight: 1},
					{URL: "http://localhost:8093", Weight: 1},
				},
			},
		}

		var err error
		cat, err = catalog.New(services, "round-robin")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("should keep configuration order", func() {
			svcs := cat.Services()
			Expect(svcs).To(HaveLen(2))
			Expect(svcs[0].ID).To(Equal("user-service"))
			Expect(svcs[1].ID).To(Equal("theatre-service"))
		})

		It("should build one backend per instance", func() {
			Expect(cat.Backends()).To(HaveLen(3))
			svc, ok := cat.Lookup("theatre-service")
			Expect(ok).To(BeTrue())
			Expect(svc.Backends).To(HaveLen(2))
			Expect(svc.DocsPath).To(Equal("/v3/api-docs"))
		})

		It("should expose gateway docs urls", func() {
			svc, _ := cat.Lookup("user-service")
			Expect(svc.DocsURL()).To(Equal("/user-service/api-docs"))
		})

		It("should reject duplicate ids", func() {
			_, err := catalog.New(append(services, services[0]), "round-robin")
			Expect(err).To(HaveOccurred())
		})

		It("should reject services without instances", func() {
			_, err := catalog.New([]config.ServiceConfig{{ID: "ticket-service", Name: "Ticket Service"}}, "round-robin")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Reserve", func() {
		It("should round-robin across replicas and count the connection", func() {
			_, first, err := cat.Reserve("theatre-service")
			Expect(err).NotTo(HaveOccurred())
			_, second, err := cat.Reserve("theatre-service")
			Expect(err).NotTo(HaveOccurred())

			Expect(first).NotTo(BeIdenticalTo(second))
			Expect(first.ActiveConnections()).To(Equal(1))
			Expect(second.ActiveConnections()).To(Equal(1))
		})

		It("should skip unhealthy replicas", func() {
			svc, _ := cat.Lookup("theatre-service")
			svc.Backends[0].SetHealthy(false)

			for i := 0; i < 3; i++ {
				_, b, err := cat.Reserve("theatre-service")
				Expect(err).NotTo(HaveOccurred())
				Expect(b).To(BeIdenticalTo(svc.Backends[1]))
			}
		})

		It("should fail when no replica is healthy", func() {
			svc, _ := cat.Lookup("user-service")
			svc.Backends[0].SetHealthy(false)

			got, b, err := cat.Reserve("user-service")
			Expect(err).To(MatchError(catalog.ErrNoHealthyBackends))
			Expect(b).To(BeNil())
			Expect(got).To(BeIdenticalTo(svc))
		})

		It("should fail for unknown services", func() {
			_, _, err := cat.Reserve("search-service")
			Expect(err).To(MatchError(catalog.ErrUnknownService))
		})
	})
})
